package rgbatlas

import (
	"errors"

	"github.com/gen2brain/jpegn"
)

// Options controls decoding.
type Options struct {
	// Workers limits concurrent decodes of a batch, 0 means GOMAXPROCS, 1 decodes sequentially.
	Workers int
	// Upsample selects chroma upsampling of the default fast path decoder.
	Upsample jpegn.UpsampleMethod
	// AutoRotate makes the default fast path decoder apply EXIF orientation.
	AutoRotate bool

	// FastCodec replaces the default JPEG decoder.
	FastCodec Codec
	// GenericCodec replaces the default format-sniffing decoder.
	GenericCodec Codec
}

func newOptions(opts []func(o *Options)) Options {
	opt := Options{
		Upsample: jpegn.NearestNeighbor,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.FastCodec == nil {
		opt.FastCodec = JPEGCodec{Upsample: opt.Upsample, AutoRotate: opt.AutoRotate}
	}
	if opt.GenericCodec == nil {
		opt.GenericCodec = GenericCodec{}
	}
	return opt
}

// DecodeOne decodes a single encoded image. JPEG input goes to the fast path when
// preferFastPath is set, everything else to the generic decoder.
func DecodeOne(data []byte, preferFastPath bool, opts ...func(o *Options)) (*Image, error) {
	opt := newOptions(opts)
	return opt.decode(data, preferFastPath)
}

// DecodeAll decodes inputs independently and returns images in input order.
// The failure with the lowest input index is returned, no partial results.
func DecodeAll(inputs [][]byte, preferFastPath bool, opts ...func(o *Options)) ([]*Image, error) {
	opt := newOptions(opts)
	return opt.decodeAll(inputs, preferFastPath)
}

// DecodeAndComposite decodes inputs and packs them into an atlas with the given
// number of columns, in row-major input order.
func DecodeAndComposite(inputs [][]byte, columns int, preferFastPath bool, opts ...func(o *Options)) (*Image, error) {
	if len(inputs) == 0 {
		return nil, ErrEmpty
	}
	if err := checkColumns(len(inputs), columns); err != nil {
		return nil, err
	}

	opt := newOptions(opts)
	images, err := opt.decodeAll(inputs, preferFastPath)
	if err != nil {
		return nil, err
	}
	return Composite(images, columns)
}

func (opt Options) decodeAll(inputs [][]byte, preferFastPath bool) ([]*Image, error) {
	images := make([]*Image, len(inputs))
	errs := make([]error, len(inputs))

	parallelFor(len(inputs), opt.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			img, err := opt.decode(inputs[i], preferFastPath)
			if err != nil {
				var de *DecodeError
				if errors.As(err, &de) {
					de.Index = i
				}
				errs[i] = err
				return
			}
			images[i] = img
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return images, nil
}

func (opt Options) decode(data []byte, preferFastPath bool) (*Image, error) {
	route := Dispatch(data, preferFastPath)
	codec := opt.GenericCodec
	if route == RouteFast {
		codec = opt.FastCodec
	}

	Logger().Debug("decoding image", "route", route.String(), "bytes", len(data))

	img, err := codec.Decode(data)
	if err != nil {
		de := &DecodeError{Index: -1, Route: route, Kind: ErrCodec, Err: err}
		var cde *DecodeError
		if errors.As(err, &cde) {
			*de = *cde
			de.Route = route
			if de.Kind == nil {
				de.Kind = ErrCodec
			}
		}
		Logger().Warn("decode failed", "route", route.String(), "error", de)
		return nil, de
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, codecError(route, ErrMissingDimensions, nil)
	}
	img.mustValid()

	return img, nil
}
