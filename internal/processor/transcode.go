package processor

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"imgopt/pkg/imgutil"
)

// Transcode decodes, resizes, normalizes and re-encodes a single file into
// s.OutputDir. Errors never escape: they are reported as OutcomeFailed.
// note receives informational lines such as the transparency removal notice
// and may be nil.
func Transcode(path string, s Settings, note func(string)) Outcome {
	out := Outcome{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return failed(out, err)
	}
	if info.IsDir() {
		out.Kind = OutcomeSkipped
		out.Reason = "directory"
		return out
	}

	src, err := openImage(path, info.Size(), s.AutoOrient)
	if err != nil {
		out.OriginalBytes = info.Size()
		return failed(out, err)
	}
	out.OriginalBytes = src.Size
	out.Source = src.Kind

	width, height, err := TargetSize(s.Mode, s.Resolution, src.Width, src.Height)
	if err != nil {
		return failed(out, err)
	}
	resized := imaging.Resize(src.Pixels, width, height, imaging.Lanczos)

	if s.Format == FormatJPEG && (src.Mode == ColorAlpha || src.Mode == ColorPaletted) {
		if note != nil {
			note(fmt.Sprintf("Converting image '%s' to RGB (removing transparency).", filepath.Base(path)))
		}
		makeOpaque(resized)
	}

	dest := filepath.Join(s.OutputDir, OutputName(path, s))
	size, err := writeImage(resized, dest, s)
	if err != nil {
		return failed(out, err)
	}

	out.Kind = OutcomeProcessed
	out.OutputPath = dest
	out.OptimizedBytes = size
	out.Width = width
	out.Height = height
	return out
}

func failed(out Outcome, err error) Outcome {
	out.Kind = OutcomeFailed
	out.Err = err
	return out
}

func openImage(path string, size int64, autoOrient bool) (*ImageFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// The container kind is informational; decoding is attempted regardless.
	kind, _ := imgutil.SniffReader(file)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	pixels, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	mode := colorModeOf(pixels)

	if autoOrient {
		if orientation, err := readOrientation(file); err == nil && orientation != 1 {
			pixels = applyOrientation(pixels, orientation)
		}
	}

	bounds := pixels.Bounds()
	return &ImageFile{
		Path:   path,
		Size:   size,
		Kind:   kind,
		Pixels: pixels,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Mode:   mode,
	}, nil
}

// colorModeOf maps decoder output types to a color mode. The stdlib decoders
// return *image.RGBA only for opaque truecolor data and *image.NRGBA whenever
// the source carries an alpha channel or a transparency chunk.
func colorModeOf(img image.Image) ColorMode {
	switch img.(type) {
	case *image.Paletted:
		return ColorPaletted
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		return ColorAlpha
	case *image.Gray, *image.Gray16:
		return ColorGray
	default:
		return ColorTruecolor
	}
}

// makeOpaque drops transparency in place, keeping the stored color values.
func makeOpaque(img *image.NRGBA) {
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 3; i < len(row); i += 4 {
			row[i] = 0xff
		}
	}
}

func writeImage(img image.Image, destPath string, s Settings) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), "imgopt-*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}

	var encodeErr error
	switch s.Format {
	case FormatJPEG:
		encodeErr = imaging.Encode(tmpFile, img, imaging.JPEG, imaging.JPEGQuality(s.Quality))
	case FormatPNG:
		encodeErr = imaging.Encode(tmpFile, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		encodeErr = fmt.Errorf("unsupported output format %d", s.Format)
	}
	if encodeErr != nil {
		_ = tmpFile.Close()
		return 0, fmt.Errorf("encode %s: %w", s.Format, encodeErr)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	if err := tmpFile.Close(); err != nil {
		return 0, err
	}

	if err := replaceFile(tmpFile.Name(), destPath); err != nil {
		return 0, err
	}

	outInfo, err := os.Stat(destPath)
	if err != nil {
		return 0, err
	}
	return outInfo.Size(), nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
