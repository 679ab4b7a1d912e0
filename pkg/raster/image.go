// Package raster holds the pipeline's input image representation: a plain
// width x height RGBA buffer that is treated as immutable once constructed.
// Every processing stage derives new buffers instead of mutating the input,
// which keeps concurrent backend runs independent.
package raster

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// ErrBadDimensions marks malformed input: zero width or height, or a pixel
// buffer whose length does not match the declared dimensions. These are
// fatal; no partial result is possible.
var ErrBadDimensions = errors.New("raster: bad image dimensions")

// Image is an immutable RGBA raster. Pix holds 4 bytes per pixel in row-major
// order, identical to the layout of image.RGBA with a packed stride.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// New validates and wraps a packed RGBA pixel buffer.
func New(width, height int, pix []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: buffer length %d, want %d for %dx%d",
			ErrBadDimensions, len(pix), width*height*4, width, height)
	}
	return &Image{Width: width, Height: height, Pix: pix}, nil
}

// FromImage converts any decoded image into the packed RGBA layout the
// pipeline expects.
func FromImage(src image.Image) (*Image, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Src)
	return &Image{Width: w, Height: h, Pix: dst.Pix}, nil
}

// RGBAAt returns the four channel values at (x, y). The caller is expected to
// stay in bounds; hot loops index Pix directly instead.
func (img *Image) RGBAAt(x, y int) (r, g, b, a byte) {
	i := (y*img.Width + x) * 4
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

// Gray returns a new single-channel luminance plane in [0, 255], using the
// Rec. 601 weights.
func (img *Image) Gray() []float64 {
	return img.GrayInto(make([]float64, img.Width*img.Height))
}

// GrayInto fills dst with the luminance plane and returns it, letting callers
// supply pooled scratch. dst must have width*height elements.
func (img *Image) GrayInto(dst []float64) []float64 {
	out := dst[:img.Width*img.Height]
	for i := range out {
		j := i * 4
		r := float64(img.Pix[j])
		g := float64(img.Pix[j+1])
		b := float64(img.Pix[j+2])
		out[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return out
}

// Clone returns a mutable copy of the pixel buffer wrapped in a new Image.
// Stages that remove background pixels work on a clone, never the input.
func (img *Image) Clone() *Image {
	pix := make([]byte, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Width: img.Width, Height: img.Height, Pix: pix}
}
