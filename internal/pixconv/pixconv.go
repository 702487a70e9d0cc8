// Package pixconv converts decoded images into packed RGBA8 buffers.
package pixconv

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToRGBA8 returns a tightly packed, straight-alpha RGBA8 copy of img along with its
// dimensions. The buffer is empty when img has empty bounds.
func ToRGBA8(img image.Image) (pix []byte, w, h int) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, w, h
	}
	pix = make([]byte, w*h*4)

	switch src := img.(type) {
	case *image.NRGBA:
		copyRGBA8(pix, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, w, h)
	case *image.RGBA:
		copyRGBA8(pix, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, w, h)
		unpremultiply(pix)
	case *image.NRGBA64:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			out := pix[y*w*4 : (y+1)*w*4]
			for i := range out {
				v := uint32(row[i*2])<<8 | uint32(row[i*2+1])
				out[i] = uint8((v*0xFF + 0x7FFF) / 0xFFFF)
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			out := pix[y*w*4:]
			for x := 0; x < w; x++ {
				v := row[x]
				o := x * 4
				out[o], out[o+1], out[o+2], out[o+3] = v, v, v, 0xFF
			}
		}
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			out := pix[y*w*4:]
			for x := 0; x < w; x++ {
				yi := src.YOffset(b.Min.X+x, b.Min.Y+y)
				ci := src.COffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				o := x * 4
				out[o], out[o+1], out[o+2], out[o+3] = r, g, bl, 0xFF
			}
		}
	default:
		dst := &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
		draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	}

	return pix, w, h
}

// copyRGBA8 copies h rows of w texels from a strided source into packed dst.
func copyRGBA8(dst, src []byte, srcStride, w, h int) {
	rowSize := w * 4
	for y := 0; y < h; y++ {
		copy(dst[y*rowSize:(y+1)*rowSize], src[y*srcStride:y*srcStride+rowSize])
	}
}

func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a == 0xFF || a == 0 {
			continue
		}
		c := color.NRGBAModel.Convert(color.RGBA{R: pix[i], G: pix[i+1], B: pix[i+2], A: a}).(color.NRGBA)
		pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
	}
}
