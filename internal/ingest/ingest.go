// Package ingest validates uploaded photos and normalises them before
// they are sent to face analysis.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension bounds the longest side of an image handed to the analyzer.
const MaxDimension = 800

// MaxPixels bounds width*height of an upload. Compressed formats can
// describe far more pixels than their byte size suggests.
const MaxPixels = 40_000_000

const jpegQuality = 85

var (
	ErrEmptyImage        = errors.New("image is empty")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidImage      = errors.New("image could not be decoded")
	ErrImageTooLarge     = errors.New("image dimensions exceed limit")
)

var supportedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"webp": {},
}

// Image is a decoded, normalised upload.
type Image struct {
	Data    []byte
	Format  string
	Width   int
	Height  int
	Resized bool
}

// Decode checks that data is a supported raster image and returns it
// re-encoded as JPEG, scaled down when either side exceeds MaxDimension.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if _, ok := supportedFormats[format]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: zero size", ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	out := &Image{Format: format, Width: bounds.Dx(), Height: bounds.Dy()}

	// JPEG has no alpha, so transparent areas are flattened onto white.
	newW, newH, resize := fitWithin(out.Width, out.Height, MaxDimension)
	canvas := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	if resize {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)
		out.Width, out.Height, out.Resized = newW, newH, true
	} else {
		draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// fitWithin scales width and height so the longest side equals maxSize.
// It reports false when no scaling is needed.
func fitWithin(width, height, maxSize int) (int, int, bool) {
	if width <= maxSize && height <= maxSize {
		return width, height, false
	}
	if width > height {
		return maxSize, max(1, height*maxSize/width), true
	}
	return max(1, width*maxSize/height), maxSize, true
}
