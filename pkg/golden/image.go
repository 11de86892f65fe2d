package golden

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
)

// DefaultThreshold is the perceptual colour threshold (0..1) under which two
// pixels are considered equal.
const DefaultThreshold = 0.1

// DecodeFunc decodes an encoded image.
type DecodeFunc func(io.Reader) (image.Image, error)

// ImageComparator compares raster images pixel by pixel.
type ImageComparator struct {
	// MIMEType is the content type the actual buffer must sniff as.
	MIMEType string

	// Decode decodes both buffers.
	Decode DecodeFunc

	// Threshold is the per-pixel YIQ threshold, DefaultThreshold if zero.
	Threshold float64

	// IncludeAA counts anti-aliased pixels as differences.
	IncludeAA bool
}

// NewImageComparator returns a comparator for mimeType using DefaultThreshold.
func NewImageComparator(mimeType string, decode DecodeFunc) *ImageComparator {
	return &ImageComparator{
		MIMEType:  mimeType,
		Decode:    decode,
		Threshold: DefaultThreshold,
	}
}

// Compare decodes both images and counts differing pixels. Images of
// different dimensions are reported with ErrSizeMismatch and no diff raster.
func (c *ImageComparator) Compare(actual, expected []byte) (*Mismatch, error) {
	if detected := mimetype.Detect(actual); !detected.Is(c.MIMEType) {
		return &Mismatch{
			Message: fmt.Sprintf("Expected %s content, but actual is %s. ", c.MIMEType, detected.String()),
			Err:     ErrContentType,
		}, nil
	}

	actualImg, err := c.Decode(bytes.NewReader(actual))
	if err != nil {
		return nil, fmt.Errorf("failed to decode actual image: %w", err)
	}
	expectedImg, err := c.Decode(bytes.NewReader(expected))
	if err != nil {
		return nil, fmt.Errorf("failed to decode golden image: %w", err)
	}

	ab, eb := actualImg.Bounds(), expectedImg.Bounds()
	if ab.Dx() != eb.Dx() || ab.Dy() != eb.Dy() {
		return &Mismatch{
			Message: fmt.Sprintf("Sizes differ; expected image %dpx X %dpx, but got %dpx X %dpx. ",
				eb.Dx(), eb.Dy(), ab.Dx(), ab.Dy()),
			Err: ErrSizeMismatch,
		}, nil
	}

	threshold := c.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	a, e := toNRGBA(actualImg), toNRGBA(expectedImg)
	out := image.NewNRGBA(a.Rect)
	count := pixelmatch(e.Pix, a.Pix, out.Pix, a.Rect.Dx(), a.Rect.Dy(), pixelmatchOptions{
		threshold: threshold,
		includeAA: c.IncludeAA,
		alpha:     0.1,
		aaColor:   [3]uint8{255, 255, 0},
		diffColor: [3]uint8{255, 0, 0},
	})
	if count == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode diff image: %w", err)
	}
	return &Mismatch{
		Message: fmt.Sprintf("%d pixels differ. ", count),
		Diff:    buf.Bytes(),
		DiffExt: ".png",
	}, nil
}

// toNRGBA copies img into a zero-origin, non-premultiplied RGBA buffer.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
