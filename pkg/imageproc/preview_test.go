package imageproc_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chronolens/chronolens/pkg/imageproc"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodePNGWithAlpha(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeOpaquePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 0, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGeneratePreviewUsesJPEGForOpaquePNG(t *testing.T) {
	src := encodeOpaquePNG(t, 3, 3)
	img, err := imageproc.DecodeOriginal(src, "image/png")
	require.NoError(t, err)

	preview, err := imageproc.GeneratePreview(img)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", preview.ContentType)
}

func TestGeneratePreviewPreservesAspectAndHeight(t *testing.T) {
	src := encodeJPEG(t, 400, 100)
	img, err := imageproc.DecodeOriginal(src, "image/jpeg")
	require.NoError(t, err)

	preview, err := imageproc.GeneratePreview(img)
	require.NoError(t, err)
	assert.Equal(t, imageproc.PreviewHeight, preview.Height)
	assert.Equal(t, 800, preview.Width)
	assert.Equal(t, "image/jpeg", preview.ContentType)
	assert.NotEmpty(t, preview.Data)
}

func TestGeneratePreviewUsesPNGWhenSourceHasAlpha(t *testing.T) {
	src := encodePNGWithAlpha(t, 100, 100)
	img, err := imageproc.DecodeOriginal(src, "image/png")
	require.NoError(t, err)

	preview, err := imageproc.GeneratePreview(img)
	require.NoError(t, err)
	assert.Equal(t, "image/png", preview.ContentType)
}

func TestDecodeOriginalRejectsGarbageBytes(t *testing.T) {
	_, err := imageproc.DecodeOriginal([]byte("not an image"), "image/jpeg")
	assert.Error(t, err)
	assert.True(t, imageproc.Unparseable.Has(err))
}
