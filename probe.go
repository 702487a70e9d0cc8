package rgbatlas

import (
	"bytes"
	"errors"
	"image"

	"github.com/gen2brain/jpegn"
)

// ProbeResult describes an encoded image without decoding pixel data.
type ProbeResult struct {
	Route  Route
	Format string
	Width  int
	Height int
}

// Probe reads image headers to report the decode route, format and dimensions.
func Probe(data []byte, preferFastPath bool) (ProbeResult, error) {
	res := ProbeResult{Route: Dispatch(data, preferFastPath)}

	if res.Route == RouteFast {
		cfg, err := jpegn.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return res, codecError(res.Route, ErrCodec, err)
		}
		res.Format = "jpeg"
		res.Width, res.Height = cfg.Width, cfg.Height
	} else {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return res, codecError(res.Route, ErrFormatUnrecognized, err)
			}
			return res, codecError(res.Route, ErrCodec, err)
		}
		res.Format = format
		res.Width, res.Height = cfg.Width, cfg.Height
	}

	if res.Width <= 0 || res.Height <= 0 {
		return res, codecError(res.Route, ErrMissingDimensions, nil)
	}
	return res, nil
}
