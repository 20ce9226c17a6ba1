// Package dedup filters out frames that are perceptually identical to the
// previously accepted frame, so a stalled camera does not freeze the
// assembled timelapse.
package dedup

import (
	"image"

	"github.com/corona10/goimagehash"
)

// DefaultThreshold is the maximum Hamming distance between two difference
// hashes below which frames are considered perceptually identical.
const DefaultThreshold = 10

// Filter is a sequential near-duplicate filter. Frames are compared against
// the last accepted frame only, which is the comparison that matters for a
// time-ordered sequence.
type Filter struct {
	threshold int
	prev      *goimagehash.ImageHash
}

// New creates a Filter with the default distance threshold.
func New() *Filter {
	return NewWithThreshold(DefaultThreshold)
}

// NewWithThreshold creates a Filter with a custom distance threshold.
// Non-positive values fall back to the default.
func NewWithThreshold(threshold int) *Filter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Filter{threshold: threshold}
}

// IsDuplicate reports whether img is perceptually identical to the previously
// accepted frame. When the frame is accepted its hash becomes the new
// comparison point. If hashing fails the frame is accepted (graceful
// degradation).
func (f *Filter) IsDuplicate(img image.Image) bool {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return false
	}

	if f.prev != nil {
		if dist, err := hash.Distance(f.prev); err == nil && dist < f.threshold {
			return true
		}
	}

	f.prev = hash
	return false
}

// Reset forgets the previously accepted frame.
func (f *Filter) Reset() {
	f.prev = nil
}
