package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/jhuberd/timestamper/internal/config"
	"github.com/jhuberd/timestamper/pkg/pipeline"
	"github.com/jhuberd/timestamper/pkg/types"
	"github.com/jhuberd/timestamper/pkg/video"
)

func main() {
	var src, dest, size, prefix, cfgPath string
	var quality int
	var dual bool
	var verbose bool

	var makeVideo, skipDupes bool
	var fps, crf int
	var out, encoder string

	flag.StringVar(&src, "src", "", "source folder with photos")
	flag.StringVar(&dest, "dest", "", "destination folder for stamped images (default <src>/stamped_images)")
	flag.StringVar(&size, "size", "", "stamp font size: small|medium|large")
	flag.BoolVar(&dual, "dual", true, "draw the time on a line above the date")
	flag.IntVar(&quality, "quality", 0, "JPEG quality of stamped output (1-100)")
	flag.StringVar(&prefix, "prefix", "", "filename prefix for stamped images")

	flag.BoolVar(&makeVideo, "video", false, "assemble stamped images into an MP4 timelapse")
	flag.IntVar(&fps, "fps", 0, "timelapse frame rate")
	flag.IntVar(&crf, "crf", -1, "encoder constant rate factor (0-51, lower is better)")
	flag.StringVar(&out, "out", "", "timelapse output file")
	flag.StringVar(&encoder, "encoder", "", "path to the ffmpeg binary")
	flag.BoolVar(&skipDupes, "skip-dupes", false, "drop frames perceptually identical to the previous frame")

	flag.StringVar(&cfgPath, "config", "", "path to a YAML config file (default ~/.config/timestamper/config.yaml when present)")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if src == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -src photos/ [-dest stamped/] [-size small|medium|large] [-video -fps 30 -crf 23 -out timelapse.mp4]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	if dest == "" {
		dest = filepath.Join(src, "stamped_images")
	}

	cfg := loadConfig(log, cfgPath)
	applyFlagOverrides(cfg, size, prefix, quality, dual, makeVideo, skipDupes, fps, crf, out, encoder)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	p, err := pipeline.New(pipeline.Options{
		SourceDir: src,
		DestDir:   dest,
		Stamp: types.StampOptions{
			Preset:    types.FontPreset(cfg.Stamp.FontSize),
			DualStamp: cfg.Stamp.Dual,
			Quality:   cfg.Stamp.Quality,
			Prefix:    cfg.Stamp.Prefix,
		},
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize pipeline")
	}
	p.SetProgress(func(done, total int, file string) {
		log.Debugf("progress %d/%d: %s", done, total, file)
	})

	report, err := p.Run()
	if err != nil {
		log.WithError(err).Fatal("stamping run failed")
	}

	vopts := types.VideoOptions{
		Enabled:        cfg.Video.Enabled,
		FPS:            cfg.Video.FPS,
		CRF:            cfg.Video.CRF,
		Output:         cfg.Video.Output,
		EncoderPath:    cfg.Video.EncoderPath,
		SkipDuplicates: cfg.Video.SkipDuplicates,
		DedupThreshold: cfg.Video.DedupThreshold,
	}
	if !vopts.Enabled {
		return
	}

	// Relative outputs land next to the stamped images.
	if !filepath.IsAbs(vopts.Output) {
		vopts.Output = filepath.Join(dest, vopts.Output)
	}

	assembler := video.New(vopts, log)
	if err := assembler.CheckEncoder(); err != nil {
		log.WithError(err).Error("skipping video assembly")
		return
	}
	if report.Stamped == 0 {
		log.Error("skipping video assembly, no images were stamped")
		return
	}
	if err := assembler.Assemble(dest, vopts.Output); err != nil {
		log.WithError(err).Error("video assembly failed")
	}
}

// loadConfig returns the config for an explicit -config path, or the file at
// the default location when one exists, or the built-in defaults.
func loadConfig(log *logrus.Logger, path string) *config.Config {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	return cfg
}

// applyFlagOverrides lets explicit command-line flags win over file values.
func applyFlagOverrides(cfg *config.Config, size, prefix string, quality int, dual, makeVideo, skipDupes bool, fps, crf int, out, encoder string) {
	if size != "" {
		cfg.Stamp.FontSize = size
	}
	if prefix != "" {
		cfg.Stamp.Prefix = prefix
	}
	if quality > 0 {
		cfg.Stamp.Quality = quality
	}
	if fps > 0 {
		cfg.Video.FPS = fps
	}
	if crf >= 0 {
		cfg.Video.CRF = crf
	}
	if out != "" {
		cfg.Video.Output = out
	}
	if encoder != "" {
		cfg.Video.EncoderPath = encoder
	}

	// Boolean flags carry no "unset" state, so only an explicit mention on
	// the command line overrides the file value.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dual":
			cfg.Stamp.Dual = dual
		case "video":
			cfg.Video.Enabled = makeVideo
		case "skip-dupes":
			cfg.Video.SkipDuplicates = skipDupes
		}
	})
}
