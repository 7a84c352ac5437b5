// Package imageproc decodes originals (including HEIF), derives a
// resized preview, and extracts EXIF fields — the shared image-handling
// code behind the preview and metadata workers (spec §4.3, §4.4).
package imageproc

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
)

// PreviewHeight is the fixed preview height of spec §4.3 step 3. It
// applies to the height whatever the orientation, not to the short edge.
const PreviewHeight = 200

// PreviewJPEGQuality is the quality used when the preview is encoded as
// JPEG (no alpha channel present in the source).
const PreviewJPEGQuality = 85

// ContentTypeHEIC and ContentTypeHEIF are the HEIF content types spec
// §4.3 step 2 special-cases.
const (
	ContentTypeHEIC = "image/heic"
	ContentTypeHEIF = "image/heif"
)

// Preview is a derived preview image and the content type it was encoded
// with (spec §4.3 step 4: JPEG unless the source had alpha, then PNG).
type Preview struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// DecodeOriginal decodes src according to contentType, applying EXIF
// orientation correction for non-HEIF sources (spec §4.3 step 2). An
// undecodable source returns an Unparseable error so the caller can Term
// the message rather than retry it.
func DecodeOriginal(src []byte, contentType string) (image.Image, error) {
	switch contentType {
	case ContentTypeHEIC, ContentTypeHEIF:
		img, err := goheif.Decode(bytes.NewReader(src))
		if err != nil {
			return nil, Unparseable.Wrap(err)
		}
		return img, nil
	default:
		img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
		if err != nil {
			return nil, Unparseable.Wrap(err)
		}
		return img, nil
	}
}

// hasAlpha reports whether img's color model carries an alpha channel.
// image.RGBAModel/RGBA64Model are deliberately excluded: the stdlib PNG
// decoder returns those for the non-alpha truecolor PNG color type, and
// only uses NRGBA/NRGBA64 for color types that actually carry alpha.
func hasAlpha(img image.Image) bool {
	switch img.ColorModel() {
	case image.NRGBAModel, image.NRGBA64Model:
		return true
	default:
		return false
	}
}

// GeneratePreview resizes img to PreviewHeight, preserving aspect ratio,
// with a triangle/linear filter (spec §4.3 step 3), then re-encodes it:
// PNG if the source carried alpha, JPEG otherwise (spec §4.3 step 4).
func GeneratePreview(img image.Image) (Preview, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcH == 0 {
		return Preview{}, Error.New("zero-height source image")
	}
	aspect := float64(srcW) / float64(srcH)
	width := int(float64(PreviewHeight)*aspect + 0.5)

	resized := imaging.Resize(img, width, PreviewHeight, imaging.Linear)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if hasAlpha(img) {
		contentType = "image/png"
		if err := png.Encode(&buf, resized); err != nil {
			return Preview{}, Error.Wrap(err)
		}
	} else {
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: PreviewJPEGQuality}); err != nil {
			return Preview{}, Error.Wrap(err)
		}
	}

	return Preview{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       width,
		Height:      PreviewHeight,
	}, nil
}
