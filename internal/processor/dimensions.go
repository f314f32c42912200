package processor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxTargetPixels caps the area of a resized image. Larger targets would
// exhaust memory in the resampler.
const MaxTargetPixels = 2 * 89_478_485

var (
	ErrEmptyTarget    = errors.New("target size has a zero dimension")
	ErrTargetTooLarge = errors.New("target size exceeds the pixel limit")
)

// TargetSize computes the resized dimensions. Percentage mode scales both axes
// by the same factor independently; pixel mode fixes the width and derives the
// height from the width ratio. Results are floored. Targets larger than
// MaxTargetPixels are rejected before any integer product can overflow.
func TargetSize(mode ResizeMode, value, width, height int) (int, int, error) {
	var fw, fh float64
	switch mode {
	case ModePixels:
		fw = float64(value)
		if width > 0 {
			fh = float64(height) * fw / float64(width)
		}
	default:
		fw = float64(width) * float64(value) / 100
		fh = float64(height) * float64(value) / 100
	}
	if fw*fh > MaxTargetPixels {
		return 0, 0, fmt.Errorf("%w: %dx%d -> %.0fx%.0f", ErrTargetTooLarge, width, height, fw, fh)
	}

	var w, h int
	switch mode {
	case ModePixels:
		w = value
		if width > 0 {
			h = height * w / width
		}
	default:
		w = width * value / 100
		h = height * value / 100
	}
	if w <= 0 || h <= 0 {
		return w, h, fmt.Errorf("%w: %dx%d -> %dx%d", ErrEmptyTarget, width, height, w, h)
	}
	return w, h, nil
}

// OutputName returns the file name an input is written under.
func OutputName(path string, s Settings) string {
	if s.FilenamePrefix != "" {
		return s.FilenamePrefix + "." + s.Ext
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_opt." + s.Ext
}
