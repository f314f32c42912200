package processor

import (
	"image"

	"imgopt/pkg/imgutil"
)

type ResizeMode int

const (
	ModePercentage ResizeMode = iota
	ModePixels
)

func (m ResizeMode) String() string {
	if m == ModePixels {
		return "pixels"
	}
	return "percentage"
}

type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
)

func (f Format) String() string {
	if f == FormatPNG {
		return "png"
	}
	return "jpeg"
}

// ColorMode classifies the decoded pixel layout of a source image.
type ColorMode int

const (
	ColorTruecolor ColorMode = iota
	ColorAlpha
	ColorPaletted
	ColorGray
)

func (c ColorMode) String() string {
	switch c {
	case ColorAlpha:
		return "alpha"
	case ColorPaletted:
		return "paletted"
	case ColorGray:
		return "gray"
	default:
		return "truecolor"
	}
}

// ImageFile is the decoded state of one input during a single transcode.
type ImageFile struct {
	Path   string
	Size   int64
	Kind   imgutil.Kind
	Pixels image.Image
	Width  int
	Height int
	Mode   ColorMode
}

type OutcomeKind int

const (
	OutcomeProcessed OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "processed"
	}
}

// Outcome is the result of transcoding a single path.
type Outcome struct {
	Kind           OutcomeKind
	Path           string
	Source         imgutil.Kind
	OutputPath     string
	OriginalBytes  int64
	OptimizedBytes int64
	Width          int
	Height         int
	Reason         string
	Err            error
}

// Saved is the signed byte delta of a processed outcome and zero otherwise.
func (o Outcome) Saved() int64 {
	if o.Kind != OutcomeProcessed {
		return 0
	}
	return o.OriginalBytes - o.OptimizedBytes
}

type Failure struct {
	Path string
	Err  error
}

type Summary struct {
	Total          int
	Processed      int
	Skipped        int
	Failed         int
	OriginalBytes  int64
	OptimizedBytes int64
	SavedBytes     int64
	Failures       []Failure
}

func (s *Summary) add(o Outcome) {
	switch o.Kind {
	case OutcomeProcessed:
		s.Processed++
		s.OriginalBytes += o.OriginalBytes
		s.OptimizedBytes += o.OptimizedBytes
		s.SavedBytes += o.Saved()
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Path: o.Path, Err: o.Err})
	}
}
