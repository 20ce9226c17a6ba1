// Package timestamper batch-annotates photographs with a date/time stamp and
// optionally assembles the stamped images into an MP4 timelapse.
//
// The timestamp for each photo is resolved from EXIF DateTimeOriginal first,
// then from a YYYYMMDD_HHMMSS pattern in the filename, then from the file
// modification time. Files with no resolvable timestamp are skipped. The
// stamp is drawn in white near the bottom-right corner: the date, with the
// time on a line above it when dual stamping is enabled.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/jhuberd/timestamper"
//		"github.com/jhuberd/timestamper/pkg/types"
//	)
//
//	func main() {
//		ts, err := timestamper.NewWithConfig(types.StampOptions{
//			Preset:    types.FontLarge,
//			DualStamp: true,
//			Quality:   90,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Stamp a single photo.
//		if _, err := ts.StampFile("photo.jpg", "stamped_photo.jpg"); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or just ask where a photo's timestamp would come from.
//		when, source, err := ts.ResolveTimestamp("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("%s (%s)", when, source)
//	}
//
// The package consists of the following components:
//
// 1. Timestamp (pkg/timestamp): resolves capture time from EXIF, filename, or mtime
// 2. Stamp (pkg/stamp): renders the date/time text overlay
// 3. Processing (pkg/processing): image loading and saving
// 4. Pipeline (pkg/pipeline): the serial per-directory stamping loop
// 5. Video (pkg/video): sequencing stamped frames and invoking the encoder
// 6. Dedup (pkg/dedup): optional near-duplicate frame filtering
package timestamper

import (
	"fmt"
	"image"
	"time"

	"github.com/jhuberd/timestamper/pkg/processing"
	"github.com/jhuberd/timestamper/pkg/stamp"
	"github.com/jhuberd/timestamper/pkg/timestamp"
	"github.com/jhuberd/timestamper/pkg/types"
)

// Version of the timestamper library
const Version = "1.0.0"

// Timestamper provides a high-level interface for stamping photos.
type Timestamper struct {
	resolver *timestamp.Resolver
	renderer *stamp.Renderer
	proc     *processing.Processor
	quality  int
}

// New creates a new Timestamper with default configuration: medium font,
// dual stamp, JPEG quality 90.
func New() (*Timestamper, error) {
	return NewWithConfig(types.StampOptions{
		Preset:    types.FontMedium,
		DualStamp: true,
		Quality:   90,
	})
}

// NewWithConfig creates a new Timestamper with custom stamp options.
func NewWithConfig(opts types.StampOptions) (*Timestamper, error) {
	renderer, err := stamp.NewWithConfig(stamp.Config{
		Preset:    opts.Preset,
		DualStamp: opts.DualStamp,
	})
	if err != nil {
		return nil, err
	}
	quality := opts.Quality
	if quality < 1 || quality > 100 {
		quality = 90
	}

	return &Timestamper{
		resolver: timestamp.New(),
		renderer: renderer,
		proc:     processing.NewProcessor(),
		quality:  quality,
	}, nil
}

// ResolveTimestamp returns the timestamp that would be stamped onto the file
// and the source it was derived from.
func (t *Timestamper) ResolveTimestamp(path string) (time.Time, types.Source, error) {
	return t.resolver.Resolve(path)
}

// Stamp draws the timestamp onto a copy of img and returns the copy.
func (t *Timestamper) Stamp(img image.Image, ts time.Time) image.Image {
	return t.renderer.Stamp(img, ts)
}

// StampFile loads src, resolves its timestamp, draws the stamp, and writes
// the result to dst as JPEG. It returns the resolved timestamp.
func (t *Timestamper) StampFile(src, dst string) (time.Time, error) {
	ts, _, err := t.resolver.Resolve(src)
	if err != nil {
		return time.Time{}, err
	}

	img, err := t.proc.LoadImage(src)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load image: %w", err)
	}

	stamped := t.renderer.Stamp(img, ts)
	if err := t.proc.SaveJPEG(stamped, dst, t.quality); err != nil {
		return time.Time{}, fmt.Errorf("failed to save stamped image: %w", err)
	}

	return ts, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
