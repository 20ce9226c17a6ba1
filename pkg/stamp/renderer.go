// Package stamp renders date/time text onto images.
package stamp

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/jhuberd/timestamper/pkg/types"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04:05"

	// Pixel placements of the original stamping behavior: text is
	// right-aligned to the image width with a 10px edge padding, the date
	// sits 10px above the bottom edge and the time line sits fontSize+20px
	// above the bottom edge.
	edgePadding   = 10
	bottomPadding = 10
	timeLineGap   = 20
)

// Config holds configuration for the stamp renderer.
type Config struct {
	Preset    types.FontPreset
	DualStamp bool
	Fill      color.NRGBA
}

// Renderer draws timestamp text near the bottom-right corner of an image.
type Renderer struct {
	config Config
	face   font.Face
}

// New creates a Renderer with the default configuration: medium font,
// time drawn above the date, white fill.
func New() (*Renderer, error) {
	return NewWithConfig(Config{
		Preset:    types.FontMedium,
		DualStamp: true,
	})
}

// NewWithConfig creates a Renderer with a custom configuration. The embedded
// Go Regular face is used; a zero Fill defaults to white.
func NewWithConfig(config Config) (*Renderer, error) {
	if !config.Preset.Valid() {
		config.Preset = types.FontMedium
	}
	if config.Fill == (color.NRGBA{}) {
		config.Fill = color.NRGBA{255, 255, 255, 255}
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    config.Preset.Points(),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &Renderer{config: config, face: face}, nil
}

// Stamp renders the timestamp onto a copy of img and returns the copy.
// The input image is never mutated.
func (r *Renderer) Stamp(img image.Image, ts time.Time) *image.NRGBA {
	canvas := imaging.Clone(img)

	r.drawLine(canvas, ts.Format(dateFormat), bottomPadding)
	if r.config.DualStamp {
		r.drawLine(canvas, ts.Format(timeFormat), int(r.config.Preset.Points())+timeLineGap)
	}
	return canvas
}

// drawLine draws text right-aligned to the image width, with its top edge
// bottomOffset pixels above the bottom of the image.
func (r *Renderer) drawLine(canvas *image.NRGBA, text string, bottomOffset int) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(r.config.Fill),
		Face: r.face,
	}

	metrics := r.face.Metrics()
	textWidth := d.MeasureString(text).Ceil()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	x := canvas.Bounds().Dx() - textWidth - edgePadding
	top := canvas.Bounds().Dy() - textHeight - bottomOffset

	d.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(top) + metrics.Ascent,
	}
	d.DrawString(text)
}
