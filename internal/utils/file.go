package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsSourceImage checks if a file can be stamped. JPEGs are the primary
// input; PNG and WebP sources are accepted too since the loader decodes
// them, and the stamped output is always JPEG.
func IsSourceImage(filename string) bool {
	ext := GetFileExtension(filename)
	for _, imgExt := range []string{"jpg", "jpeg", "png", "webp"} {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// ListSourceImages lists stampable image files directly inside dir (no
// recursion), sorted by name. AppleDouble sidecar files ("._" prefix) are
// skipped.
func ListSourceImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "._") {
			continue
		}
		if IsSourceImage(name) {
			files = append(files, filepath.Join(dir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// StampedName generates the output filename for a stamped image: the prefix
// plus the source base name, with the extension forced to .jpg.
func StampedName(inputFile, outputDir, prefix string) string {
	baseName := filepath.Base(inputFile)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return filepath.Join(outputDir, fmt.Sprintf("%s%s.jpg", prefix, nameWithoutExt))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}
