package processor

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultOutputDir = "optimized_images"

// JPEG quality bounds.
const (
	MinQuality = 10
	MaxQuality = 100
)

var ErrInvalidSettings = errors.New("invalid settings")

// Options is the unvalidated run configuration as collected from a caller.
type Options struct {
	OutputDir      string
	Quality        int
	Format         string
	FilenamePrefix string
	ResizeMode     string
	Resolution     int
	AutoOrient     bool
}

// Settings is the validated, read-only configuration of one batch run.
// It is passed by value so a run never observes later caller edits.
type Settings struct {
	OutputDir      string
	Mode           ResizeMode
	Resolution     int
	Format         Format
	Ext            string
	Quality        int
	FilenamePrefix string
	AutoOrient     bool
}

func NewSettings(opts Options) (Settings, error) {
	s := Settings{
		OutputDir:      strings.TrimSpace(opts.OutputDir),
		Resolution:     opts.Resolution,
		Quality:        opts.Quality,
		FilenamePrefix: opts.FilenamePrefix,
		AutoOrient:     opts.AutoOrient,
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}

	mode, err := ParseResizeMode(opts.ResizeMode)
	if err != nil {
		return Settings{}, err
	}
	s.Mode = mode

	format, ext, err := ParseFormat(opts.Format)
	if err != nil {
		return Settings{}, err
	}
	s.Format = format
	s.Ext = ext

	if s.Resolution <= 0 {
		return Settings{}, fmt.Errorf("%w: resolution must be positive, got %d", ErrInvalidSettings, s.Resolution)
	}
	if s.Format == FormatJPEG && (s.Quality < MinQuality || s.Quality > MaxQuality) {
		return Settings{}, fmt.Errorf("%w: quality must be within %d-%d, got %d", ErrInvalidSettings, MinQuality, MaxQuality, s.Quality)
	}
	if strings.ContainsAny(s.FilenamePrefix, `/\`) {
		return Settings{}, fmt.Errorf("%w: filename %q must not contain a path separator", ErrInvalidSettings, s.FilenamePrefix)
	}

	return s, nil
}

// ParseFormat accepts jpeg, jpg or png in any case. The lower-cased spelling
// doubles as the output file extension.
func ParseFormat(s string) (Format, string, error) {
	ext := strings.ToLower(strings.TrimSpace(s))
	switch ext {
	case "jpeg", "jpg":
		return FormatJPEG, ext, nil
	case "png":
		return FormatPNG, ext, nil
	default:
		return FormatJPEG, "", fmt.Errorf("%w: unsupported output format %q", ErrInvalidSettings, s)
	}
}

func ParseResizeMode(s string) (ResizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent", "%":
		return ModePercentage, nil
	case "pixels", "pixel", "px":
		return ModePixels, nil
	default:
		return ModePercentage, fmt.Errorf("%w: unknown resize mode %q", ErrInvalidSettings, s)
	}
}
