package rgbatlas

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif" // Register GIF decoder.
	_ "image/png" // Register PNG decoder.

	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// GenericCodec decodes any registered format, detected from content.
// JPEG is registered by the fast path decoder package as well, so JPEG input
// that is routed here still decodes.
type GenericCodec struct{}

// Decode detects the format of data and decodes it to RGBA8.
func (GenericCodec) Decode(data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, codecError(RouteGeneric, ErrFormatUnrecognized, err)
		}
		return nil, codecError(RouteGeneric, ErrCodec, err)
	}
	return fromDecoded(RouteGeneric, img)
}
