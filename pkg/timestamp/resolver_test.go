package timestamp

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhuberd/timestamper/pkg/types"
)

// encodeTestJPEG returns a small encoded JPEG.
func encodeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// exifSegment builds a minimal APP1 Exif segment carrying only
// DateTimeOriginal.
func exifSegment(datetime string) []byte {
	// TIFF block, little-endian, offsets relative to the TIFF header.
	var tiff bytes.Buffer
	le := binary.LittleEndian

	write16 := func(v uint16) { _ = binary.Write(&tiff, le, v) }
	write32 := func(v uint32) { _ = binary.Write(&tiff, le, v) }

	tiff.WriteString("II")
	write16(42)
	write32(8) // IFD0 offset

	// IFD0: one entry pointing at the Exif sub-IFD.
	write16(1)
	write16(0x8769) // ExifIFDPointer
	write16(4)      // LONG
	write32(1)
	write32(26) // Exif IFD offset
	write32(0)  // no next IFD

	// Exif IFD: one DateTimeOriginal entry.
	value := append([]byte(datetime), 0)
	write16(1)
	write16(0x9003) // DateTimeOriginal
	write16(2)      // ASCII
	write32(uint32(len(value)))
	write32(44) // value offset
	write32(0)  // no next IFD
	tiff.Write(value)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var seg bytes.Buffer
	seg.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&seg, binary.BigEndian, uint16(len(payload)+2))
	seg.Write(payload)
	return seg.Bytes()
}

// writeJPEGWithEXIF writes a JPEG containing the given DateTimeOriginal.
func writeJPEGWithEXIF(t *testing.T, path, datetime string) {
	t.Helper()
	plain := encodeTestJPEG(t)

	// Splice the APP1 segment right after the SOI marker.
	var out bytes.Buffer
	out.Write(plain[:2])
	out.Write(exifSegment(datetime))
	out.Write(plain[2:])

	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func writePlainJPEG(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, encodeTestJPEG(t), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestResolveFromEXIF(t *testing.T) {
	dir := t.TempDir()
	// The filename carries a decoy pattern; EXIF must win.
	path := filepath.Join(dir, "IMG_19990101_000000.jpg")
	writeJPEGWithEXIF(t, path, "2023:05:17 08:30:00")

	ts, source, err := New().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if source != types.SourceEXIF {
		t.Errorf("expected source %q, got %q", types.SourceEXIF, source)
	}
	// Compare wall-clock fields; the EXIF block carries no zone.
	if got := ts.Format("2006-01-02 15:04:05"); got != "2023-05-17 08:30:00" {
		t.Errorf("expected 2023-05-17 08:30:00, got %s", got)
	}
}

func TestResolveFromEXIFJpegExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpeg")
	writeJPEGWithEXIF(t, path, "2021:12:24 18:00:00")

	ts, source, err := New().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if source != types.SourceEXIF {
		t.Errorf("expected source %q, got %q", types.SourceEXIF, source)
	}
	if got := ts.Format("2006-01-02 15:04:05"); got != "2021-12-24 18:00:00" {
		t.Errorf("expected 2021-12-24 18:00:00, got %s", got)
	}
}

func TestImageFormat(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"photo.png", true},
		{"photo.webp", true},
		{"photo.gif", false},
		{"photo", false},
	}
	for _, tt := range tests {
		if _, ok := imageFormat(tt.path); ok != tt.want {
			t.Errorf("imageFormat(%q) = %v, want %v", tt.path, ok, tt.want)
		}
	}
}

func TestResolveFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_20240131_092455.jpg")
	writePlainJPEG(t, path)

	ts, source, err := New().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if source != types.SourceFilename {
		t.Errorf("expected source %q, got %q", types.SourceFilename, source)
	}
	want := time.Date(2024, 1, 31, 9, 24, 55, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("expected %v, got %v", want, ts)
	}
}

func TestResolveFromModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.jpg")
	writePlainJPEG(t, path)

	mtime := time.Date(2022, 11, 3, 16, 45, 12, 0, time.Local)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	ts, source, err := New().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if source != types.SourceModTime {
		t.Errorf("expected source %q, got %q", types.SourceModTime, source)
	}
	if !ts.Equal(mtime) {
		t.Errorf("expected %v, got %v", mtime, ts)
	}
}

func TestResolveInvalidFilenameDateFallsThrough(t *testing.T) {
	dir := t.TempDir()
	// Matches the pattern but is not a real date.
	path := filepath.Join(dir, "IMG_99999999_123456.jpg")
	writePlainJPEG(t, path)

	_, source, err := New().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if source != types.SourceModTime {
		t.Errorf("expected fallthrough to %q, got %q", types.SourceModTime, source)
	}
}

func TestResolveMissingFile(t *testing.T) {
	_, _, err := New().Resolve(filepath.Join(t.TempDir(), "nope.jpg"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromFilename(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		want bool
	}{
		{"IMG_20240131_092455.jpg", true},
		{"20240131_092455.jpg", true},
		{"prefix_20240131_092455_suffix.jpg", true},
		{"photo.jpg", false},
		{"2024_0131_092455.jpg", false},
		{"IMG_99999999_123456.jpg", false},
	}
	for _, tt := range tests {
		if _, ok := r.fromFilename(tt.name); ok != tt.want {
			t.Errorf("fromFilename(%q) = %v, want %v", tt.name, ok, tt.want)
		}
	}
}
