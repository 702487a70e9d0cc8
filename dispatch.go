package rgbatlas

const (
	markerStart = 0xFF
	markerSOI   = 0xD8
)

// Route identifies the decoder an input is sent to.
type Route int

const (
	// RouteGeneric is the format-sniffing fallback decoder.
	RouteGeneric Route = iota
	// RouteFast is the specialized JPEG decoder.
	RouteFast
)

func (r Route) String() string {
	switch r {
	case RouteFast:
		return "fast"
	case RouteGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Dispatch picks the decoder for data. The fast path is only taken when it is
// preferred and data starts with the JPEG SOI marker and has more bytes after it.
func Dispatch(data []byte, preferFastPath bool) Route {
	if preferFastPath && len(data) > 2 && data[0] == markerStart && data[1] == markerSOI {
		return RouteFast
	}
	return RouteGeneric
}
