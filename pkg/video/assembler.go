// Package video assembles stamped frames into an MP4 timelapse by shelling
// out to an external encoder.
package video

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jhuberd/timestamper/internal/utils"
	"github.com/jhuberd/timestamper/pkg/dedup"
	"github.com/jhuberd/timestamper/pkg/processing"
	"github.com/jhuberd/timestamper/pkg/types"
)

// framePattern is the zero-padded sequence name handed to the encoder.
const framePattern = "frame_%06d.jpg"

// Runner executes the external encoder and returns its combined output.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Assembler renumbers stamped frames into a sequential set and invokes the
// encoder exactly once per run.
type Assembler struct {
	opts   types.VideoOptions
	runner Runner
	proc   *processing.Processor
	filter *dedup.Filter
	log    *logrus.Logger
}

// New creates an Assembler for the given options. When SkipDuplicates is set
// a filter with the configured distance threshold is installed.
func New(opts types.VideoOptions, log *logrus.Logger) *Assembler {
	if opts.EncoderPath == "" {
		opts.EncoderPath = "ffmpeg"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &Assembler{
		opts:   opts,
		runner: execRunner{},
		proc:   processing.NewProcessor(),
		log:    log,
	}
	if opts.SkipDuplicates {
		a.filter = dedup.NewWithThreshold(opts.DedupThreshold)
	}
	return a
}

// SetRunner allows setting a custom encoder runner.
func (a *Assembler) SetRunner(r Runner) {
	a.runner = r
}

// SetDedupFilter enables skipping of frames perceptually identical to the
// previous frame before they enter the sequence.
func (a *Assembler) SetDedupFilter(f *dedup.Filter) {
	a.filter = f
}

// CheckEncoder reports whether the configured encoder binary can be found.
func (a *Assembler) CheckEncoder() error {
	if _, err := exec.LookPath(a.opts.EncoderPath); err != nil {
		return fmt.Errorf("encoder not found: %w", err)
	}
	return nil
}

// Assemble copies the stamped images in stampedDir into a zero-padded
// temporary sequence and invokes the encoder to produce outputPath.
func (a *Assembler) Assemble(stampedDir, outputPath string) error {
	frames, err := utils.ListSourceImages(stampedDir)
	if err != nil {
		return fmt.Errorf("failed to list stamped frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no stamped frames in %s", stampedDir)
	}

	tmpDir, err := os.MkdirTemp("", "timestamper-frames-")
	if err != nil {
		return fmt.Errorf("failed to create frame directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	count, err := a.sequenceFrames(frames, tmpDir)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("all %d frames were dropped as duplicates", len(frames))
	}

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(a.opts.FPS),
		"-i", filepath.Join(tmpDir, framePattern),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-profile:v", "high",
		"-level", "4.1",
		"-crf", strconv.Itoa(a.opts.CRF),
		outputPath,
	}

	a.log.WithFields(logrus.Fields{
		"frames": count,
		"fps":    a.opts.FPS,
		"crf":    a.opts.CRF,
	}).Info("assembling timelapse")

	output, err := a.runner.Run(a.opts.EncoderPath, args...)
	if err != nil {
		return fmt.Errorf("encoder error: %w\noutput:\n%s", err, string(output))
	}

	a.log.WithField("output", outputPath).Info("timelapse written")
	return nil
}

// sequenceFrames copies frames into dir under gapless zero-padded names,
// optionally dropping near-duplicate frames. Returns the number of frames
// written.
func (a *Assembler) sequenceFrames(frames []string, dir string) (int, error) {
	n := 0
	for _, frame := range frames {
		if a.filter != nil {
			img, err := a.proc.LoadImage(frame)
			if err != nil {
				return 0, fmt.Errorf("failed to load frame %s: %w", filepath.Base(frame), err)
			}
			if a.filter.IsDuplicate(img) {
				a.log.WithField("frame", filepath.Base(frame)).Debug("skipping duplicate frame")
				continue
			}
		}

		dst := filepath.Join(dir, fmt.Sprintf(framePattern, n))
		if err := copyFile(frame, dst); err != nil {
			return 0, fmt.Errorf("failed to sequence frame %s: %w", filepath.Base(frame), err)
		}
		n++
	}
	return n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
