package rgbatlas

import "testing"

func TestDispatch(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		prefer bool
		want   Route
	}{
		{"jpeg preferred", []byte{0xFF, 0xD8, 0xFF, 0xE0}, true, RouteFast},
		{"jpeg not preferred", []byte{0xFF, 0xD8, 0xFF, 0xE0}, false, RouteGeneric},
		{"marker only", []byte{0xFF, 0xD8}, true, RouteGeneric},
		{"marker plus one byte", []byte{0xFF, 0xD8, 0x00}, true, RouteFast},
		{"png", []byte("\x89PNG\r\n\x1a\n"), true, RouteGeneric},
		{"swapped marker", []byte{0xD8, 0xFF, 0xFF}, true, RouteGeneric},
		{"empty", nil, true, RouteGeneric},
		{"single byte", []byte{0xFF}, true, RouteGeneric},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Dispatch(c.data, c.prefer); got != c.want {
				t.Fatalf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestRouteString(t *testing.T) {
	if RouteFast.String() != "fast" || RouteGeneric.String() != "generic" || Route(7).String() != "unknown" {
		t.Fatal("unexpected route names")
	}
}
