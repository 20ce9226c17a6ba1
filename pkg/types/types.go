package types

import "time"

// FontPreset is the three-way stamp size selector.
type FontPreset string

const (
	FontSmall  FontPreset = "small"
	FontMedium FontPreset = "medium"
	FontLarge  FontPreset = "large"
)

// Points returns the font size in points for a preset. Unknown values fall
// back to the medium size.
func (p FontPreset) Points() float64 {
	switch p {
	case FontSmall:
		return 24
	case FontLarge:
		return 72
	default:
		return 48
	}
}

// Valid reports whether the preset is one of the three known sizes.
func (p FontPreset) Valid() bool {
	switch p {
	case FontSmall, FontMedium, FontLarge:
		return true
	}
	return false
}

// Source identifies where a resolved timestamp came from.
type Source string

const (
	SourceEXIF     Source = "exif"
	SourceFilename Source = "filename"
	SourceModTime  Source = "mtime"
)

// StampOptions contains options for the text overlay.
type StampOptions struct {
	Preset    FontPreset
	DualStamp bool // draw the time line above the date line
	Quality   int  // JPEG quality of the stamped output
	Prefix    string
}

// VideoOptions contains options for the timelapse assembly stage.
type VideoOptions struct {
	Enabled        bool
	FPS            int
	CRF            int
	Output         string
	EncoderPath    string
	SkipDuplicates bool
	DedupThreshold int
}

// FileResult records the outcome for a single processed file.
type FileResult struct {
	Path      string
	Output    string
	Timestamp time.Time
	Source    Source
	Skipped   bool // no timestamp could be determined
	Err       error
}
