// Package timestamp resolves the capture time of a photo file.
//
// Resolution order: EXIF DateTimeOriginal, then an 8-digit-date_6-digit-time
// pattern in the filename, then the file modification time. The order is
// deterministic per input file.
package timestamp

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bep/imagemeta"

	"github.com/jhuberd/timestamper/pkg/types"
)

// exifLayout is the timestamp layout used by EXIF DateTimeOriginal.
const exifLayout = "2006:01:02 15:04:05"

// filenameLayout matches names like IMG_20240131_092455.jpg.
const filenameLayout = "20060102_150405"

var filenamePattern = regexp.MustCompile(`(\d{8})_(\d{6})`)

// Resolver determines the timestamp of an image file.
type Resolver struct{}

// New creates a new Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve returns the timestamp for the file at path and the source it was
// derived from. It returns an error only when every source is unavailable,
// in which case the caller is expected to skip the file.
func (r *Resolver) Resolve(path string) (time.Time, types.Source, error) {
	if ts, ok := r.fromEXIF(path); ok {
		return ts, types.SourceEXIF, nil
	}

	if ts, ok := r.fromFilename(filepath.Base(path)); ok {
		return ts, types.SourceFilename, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("no timestamp source for %s: %w", filepath.Base(path), err)
	}
	return info.ModTime(), types.SourceModTime, nil
}

// fromEXIF extracts DateTimeOriginal from the file's EXIF block.
// Any read or parse failure degrades to the next source.
func (r *Resolver) fromEXIF(path string) (time.Time, bool) {
	// imagemeta needs the format up front; it does not sniff it.
	format, ok := imageFormat(path)
	if !ok {
		return time.Time{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	var ts time.Time
	var found bool

	err = imagemeta.Decode(imagemeta.Options{
		R:           f,
		ImageFormat: format,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "DateTimeOriginal"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			switch v := ti.Value.(type) {
			case time.Time:
				ts, found = v, true
			case string:
				if t, perr := time.Parse(exifLayout, v); perr == nil {
					ts, found = t, true
				}
			}
			return nil
		},
	})
	if err != nil || !found {
		return time.Time{}, false
	}
	return ts, true
}

// imageFormat maps a file extension to the imagemeta format identifier.
// Formats the loader cannot decode report no EXIF source at all.
func imageFormat(path string) (imagemeta.ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return imagemeta.JPEG, true
	case ".png":
		return imagemeta.PNG, true
	case ".webp":
		return imagemeta.WebP, true
	}
	return 0, false
}

// fromFilename parses the YYYYMMDD_HHMMSS pattern out of a file name.
func (r *Resolver) fromFilename(name string) (time.Time, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(filenameLayout, m[1]+"_"+m[2])
	if err != nil {
		// Eight digits that are not a real date, e.g. 99999999_123456.
		return time.Time{}, false
	}
	return ts, true
}
