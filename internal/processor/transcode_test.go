package processor

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgopt/pkg/imgutil"
)

func TestTranscodeJPEGPercentage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, src, 1000, 500)
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	s := testSettings(t, outDir, Options{Resolution: 50, Quality: 85})
	outcome := Transcode(src, s, nil)

	require.Equal(t, OutcomeProcessed, outcome.Kind, "err: %v", outcome.Err)
	assert.Equal(t, filepath.Join(outDir, "photo_opt.jpeg"), outcome.OutputPath)
	assert.Equal(t, 500, outcome.Width)
	assert.Equal(t, 250, outcome.Height)

	info, err := os.Stat(src)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), outcome.OriginalBytes)

	outInfo, err := os.Stat(outcome.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, outInfo.Size(), outcome.OptimizedBytes)
	assert.Equal(t, outcome.OriginalBytes-outcome.OptimizedBytes, outcome.Saved())

	img, format := decodeFile(t, outcome.OutputPath)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 500, 250), img.Bounds())

	assert.Equal(t, imgutil.KindJPEG, outcome.Source)

	f, err := os.Open(outcome.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	kind, err := imgutil.SniffReader(f)
	require.NoError(t, err)
	assert.Equal(t, imgutil.KindJPEG, kind)
}

func TestTranscodePixelsKeepsAspectRatio(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	writePNG(t, src, gradient(1000, 500))

	s := testSettings(t, dir, Options{ResizeMode: "pixels", Resolution: 300, Format: "PNG"})
	outcome := Transcode(src, s, nil)

	require.Equal(t, OutcomeProcessed, outcome.Kind, "err: %v", outcome.Err)
	img, format := decodeFile(t, filepath.Join(dir, "wide_opt.png"))
	assert.Equal(t, "png", format)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestTranscodeDirectoryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "dirA")
	require.NoError(t, os.Mkdir(sub, 0o755))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	outcome := Transcode(sub, testSettings(t, outDir, Options{}), nil)

	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	assert.Equal(t, "directory", outcome.Reason)
	assert.Zero(t, outcome.Saved())
	assert.Empty(t, listDir(t, outDir))
}

func TestTranscodeCorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("definitely not an image"), 0o644))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	outcome := Transcode(src, testSettings(t, outDir, Options{}), nil)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "decode")
	assert.Zero(t, outcome.Saved())
	assert.Empty(t, listDir(t, outDir), "a failed file must not leave output behind")
}

func TestTranscodeMissingFileFails(t *testing.T) {
	dir := t.TempDir()

	outcome := Transcode(filepath.Join(dir, "nope.png"), testSettings(t, dir, Options{}), nil)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, os.ErrNotExist)
}

func TestTranscodeTooSmallTargetFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tiny.png")
	writePNG(t, src, gradient(5, 5))

	outcome := Transcode(src, testSettings(t, dir, Options{Resolution: 10, Format: "png"}), nil)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, ErrEmptyTarget)
}

func TestTranscodeAlphaToJPEGDropsTransparency(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	writePNG(t, src, transparentImage(40, 20))

	var notes []string
	outcome := Transcode(src, testSettings(t, dir, Options{Format: "jpg"}), func(line string) {
		notes = append(notes, line)
	})

	require.Equal(t, OutcomeProcessed, outcome.Kind, "err: %v", outcome.Err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "logo.png")
	assert.Contains(t, notes[0], "removing transparency")

	img, format := decodeFile(t, filepath.Join(dir, "logo_opt.jpg"))
	assert.Equal(t, "jpeg", format)
	_, isYCbCr := img.(*image.YCbCr)
	assert.True(t, isYCbCr, "expected 3-channel output, got %T", img)
}

func TestTranscodePaletteToPNGKeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, palettedImage(64, 32))

	var notes []string
	outcome := Transcode(src, testSettings(t, dir, Options{Format: "png"}), func(line string) {
		notes = append(notes, line)
	})

	require.Equal(t, OutcomeProcessed, outcome.Kind, "err: %v", outcome.Err)
	assert.Empty(t, notes)
	assert.Equal(t, imgutil.KindPNG, outcome.Source)
	img, _ := decodeFile(t, filepath.Join(dir, "photo_opt.png"))
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
}

func TestTranscodePaletteToJPEGNotes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "indexed.png")
	writePNG(t, src, palettedImage(64, 32))

	var notes []string
	outcome := Transcode(src, testSettings(t, dir, Options{}), func(line string) {
		notes = append(notes, line)
	})

	require.Equal(t, OutcomeProcessed, outcome.Kind, "err: %v", outcome.Err)
	assert.Len(t, notes, 1)
}

func TestTranscodeFilenamePrefix(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	writeJPEG(t, src, 100, 100)
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	outcome := Transcode(src, testSettings(t, outDir, Options{FilenamePrefix: "holiday"}), nil)

	require.Equal(t, OutcomeProcessed, outcome.Kind, "err: %v", outcome.Err)
	assert.Equal(t, []string{"holiday.jpeg"}, listDir(t, outDir))
}

func TestTranscodeOutputFolderMissingFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	writeJPEG(t, src, 100, 100)

	outcome := Transcode(src, testSettings(t, filepath.Join(dir, "missing"), Options{}), nil)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Error(t, outcome.Err)
}

func TestColorModeOf(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	tests := []struct {
		img  image.Image
		want ColorMode
	}{
		{image.NewRGBA(rect), ColorTruecolor},
		{image.NewYCbCr(rect, image.YCbCrSubsampleRatio420), ColorTruecolor},
		{image.NewNRGBA(rect), ColorAlpha},
		{image.NewNRGBA64(rect), ColorAlpha},
		{image.NewPaletted(rect, nil), ColorPaletted},
		{image.NewGray(rect), ColorGray},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, colorModeOf(tt.img), "%T", tt.img)
	}
}

func TestMakeOpaque(t *testing.T) {
	img := transparentImage(4, 2)
	makeOpaque(img)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			t.Fatalf("alpha at %d = %d", i, img.Pix[i])
		}
	}
	assert.True(t, img.Opaque())
}
