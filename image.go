package rgbatlas

import (
	"errors"
	"fmt"
	"image"

	"github.com/vearutop/rgbatlas/internal/pixconv"
)

// BytesPerPixel is the size of one RGBA8 texel.
const BytesPerPixel = 4

// Image is a decoded raster in RGBA8 with straight (non-premultiplied) alpha.
// Pix is row-major and always holds exactly Width*Height*4 bytes.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// Size is a width/height pair in pixels.
type Size struct {
	W int
	H int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Size returns image dimensions.
func (img *Image) Size() Size {
	return Size{W: img.Width, H: img.Height}
}

// NRGBA exposes the image as *image.NRGBA sharing the same pixel buffer.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// FromImage converts any decoded image.Image into an RGBA8 Image.
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, errors.New("nil image")
	}
	pix, w, h := pixconv.ToRGBA8(src)
	if w <= 0 || h <= 0 {
		return nil, ErrMissingDimensions
	}
	img := &Image{Pix: pix, Width: w, Height: h}
	img.mustValid()
	return img, nil
}

// mustValid panics when the pixel buffer does not match dimensions.
func (img *Image) mustValid() {
	if img.Width < 0 || img.Height < 0 || len(img.Pix) != img.Width*img.Height*BytesPerPixel {
		panic(fmt.Sprintf("rgbatlas: invalid image buffer: %d bytes for %dx%d", len(img.Pix), img.Width, img.Height))
	}
}
