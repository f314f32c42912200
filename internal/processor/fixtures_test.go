package processor

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder collects observer events in order.
type recorder struct {
	progress []int
	lines    []string
}

func (r *recorder) OnProgress(percent int) { r.progress = append(r.progress, percent) }
func (r *recorder) OnLog(line string)      { r.lines = append(r.lines, line) }

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 0x80, A: 0xff})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, gradient(w, h), &jpeg.Options{Quality: 95}))
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func palettedImage(w, h int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%len(palette.Plan9)))
		}
	}
	return img
}

func transparentImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xff)
			if x < w/2 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 0x20, G: 0xa0, B: 0x40, A: a})
		}
	}
	return img
}

func testSettings(t *testing.T, outDir string, opts Options) Settings {
	t.Helper()

	opts.OutputDir = outDir
	if opts.Format == "" {
		opts.Format = "jpeg"
	}
	if opts.ResizeMode == "" {
		opts.ResizeMode = "percentage"
	}
	if opts.Resolution == 0 {
		opts.Resolution = 50
	}
	if opts.Quality == 0 {
		opts.Quality = 85
	}
	s, err := NewSettings(opts)
	require.NoError(t, err)
	return s
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()

	f, err := os.Open(filepath.Clean(path))
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	return img, format
}
