package rgbatlas

import (
	"bytes"
	"image"

	"github.com/gen2brain/jpegn"
)

// Codec decodes one encoded image into RGBA8.
type Codec interface {
	Decode(data []byte) (*Image, error)
}

// JPEGCodec is the fast path decoder for baseline JPEG streams.
type JPEGCodec struct {
	// Upsample selects chroma upsampling for subsampled sources.
	Upsample jpegn.UpsampleMethod
	// AutoRotate applies EXIF orientation.
	AutoRotate bool
}

// Decode decodes a JPEG stream, always producing RGBA8.
func (c JPEGCodec) Decode(data []byte) (*Image, error) {
	img, err := jpegn.Decode(bytes.NewReader(data), &jpegn.Options{
		ToRGBA:         true,
		UpsampleMethod: c.Upsample,
		AutoRotate:     c.AutoRotate,
	})
	if err != nil {
		return nil, codecError(RouteFast, ErrCodec, err)
	}
	return fromDecoded(RouteFast, img)
}

// fromDecoded packs a decoder result, an empty result means the stream carried
// no usable dimensions.
func fromDecoded(route Route, img image.Image) (*Image, error) {
	if img == nil {
		return nil, codecError(route, ErrMissingDimensions, nil)
	}
	out, err := FromImage(img)
	if err != nil {
		return nil, codecError(route, ErrMissingDimensions, nil)
	}
	return out, nil
}
