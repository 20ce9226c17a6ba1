// Package pipeline runs the serial per-file stamping loop: list the source
// images, resolve each file's timestamp, draw the stamp, write the result.
// One file at a time; a file's failure never aborts the run.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/jhuberd/timestamper/internal/utils"
	"github.com/jhuberd/timestamper/pkg/processing"
	"github.com/jhuberd/timestamper/pkg/stamp"
	"github.com/jhuberd/timestamper/pkg/timestamp"
	"github.com/jhuberd/timestamper/pkg/types"
)

// Options contains options for a stamping run.
type Options struct {
	SourceDir string
	DestDir   string
	Stamp     types.StampOptions
}

// Progress is called after each file finishes, successful or not.
type Progress func(done, total int, file string)

// Report summarizes a completed run.
type Report struct {
	Total   int
	Stamped int
	Skipped int
	Failed  int
	Files   []types.FileResult
}

// Pipeline processes source images one at a time.
type Pipeline struct {
	opts     Options
	resolver *timestamp.Resolver
	renderer *stamp.Renderer
	proc     *processing.Processor
	log      *logrus.Logger
	progress Progress
}

// New creates a Pipeline for the given options.
func New(opts Options, log *logrus.Logger) (*Pipeline, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	renderer, err := stamp.NewWithConfig(stamp.Config{
		Preset:    opts.Stamp.Preset,
		DualStamp: opts.Stamp.DualStamp,
	})
	if err != nil {
		return nil, err
	}
	if opts.Stamp.Quality < 1 || opts.Stamp.Quality > 100 {
		opts.Stamp.Quality = 90
	}

	return &Pipeline{
		opts:     opts,
		resolver: timestamp.New(),
		renderer: renderer,
		proc:     processing.NewProcessor(),
		log:      log,
	}, nil
}

// SetProgress allows setting a progress callback.
func (p *Pipeline) SetProgress(fn Progress) {
	p.progress = fn
}

// Run stamps every source image in order and returns the run report.
// It errors only when the run cannot start at all; per-file problems are
// recorded in the report and logged.
func (p *Pipeline) Run() (*Report, error) {
	if !utils.DirExists(p.opts.SourceDir) {
		return nil, fmt.Errorf("source directory %s does not exist", p.opts.SourceDir)
	}
	if err := utils.EnsureDir(p.opts.DestDir); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	files, err := utils.ListSourceImages(p.opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files found in %s", p.opts.SourceDir)
	}

	p.log.WithField("files", len(files)).Info("starting stamping run")

	report := &Report{Total: len(files)}
	for i, file := range files {
		result := p.processFile(file)
		report.Files = append(report.Files, result)

		base := filepath.Base(file)
		switch {
		case result.Skipped:
			report.Skipped++
			p.log.WithField("file", base).Warn("skipping, could not determine timestamp")
		case result.Err != nil:
			report.Failed++
			p.log.WithField("file", base).WithError(result.Err).Error("processing failed")
		default:
			report.Stamped++
			p.log.WithFields(logrus.Fields{
				"file":      base,
				"timestamp": result.Timestamp.Format("2006-01-02 15:04:05"),
				"source":    result.Source,
			}).Info("stamped")
		}

		if p.progress != nil {
			p.progress(i+1, len(files), base)
		}
	}

	p.log.WithFields(logrus.Fields{
		"stamped": report.Stamped,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("stamping run finished")

	return report, nil
}

// processFile stamps a single file. A file without any resolvable timestamp
// is skipped; other problems are failures.
func (p *Pipeline) processFile(path string) types.FileResult {
	result := types.FileResult{Path: path}

	ts, source, err := p.resolver.Resolve(path)
	if err != nil {
		result.Skipped = true
		return result
	}
	result.Timestamp = ts
	result.Source = source

	img, err := p.proc.LoadImage(path)
	if err != nil {
		result.Err = fmt.Errorf("failed to load image: %w", err)
		return result
	}

	stamped := p.renderer.Stamp(img, ts)

	out := utils.StampedName(path, p.opts.DestDir, p.opts.Stamp.Prefix)
	if err := p.proc.SaveJPEG(stamped, out, p.opts.Stamp.Quality); err != nil {
		result.Err = fmt.Errorf("failed to save stamped image: %w", err)
		return result
	}

	result.Output = out
	return result
}
