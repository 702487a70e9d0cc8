package rgbatlas

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestImageNRGBASharesPixels(t *testing.T) {
	img := solidTile(3, 2, 5)
	n := img.NRGBA()
	if n.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("unexpected bounds %v", n.Bounds())
	}
	n.SetNRGBA(2, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 6})
	if markerAt(img, 2, 1) != 9 {
		t.Fatal("NRGBA view does not share pixel buffer")
	}
}

func TestFromImage(t *testing.T) {
	img, err := FromImage(solidNRGBA(2, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4}))
	if err != nil {
		t.Fatalf("from image: %v", err)
	}
	if img.Width != 2 || img.Height != 3 || len(img.Pix) != 2*3*BytesPerPixel {
		t.Fatalf("unexpected image %dx%d, %d bytes", img.Width, img.Height, len(img.Pix))
	}

	if _, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrMissingDimensions) {
		t.Fatalf("expected ErrMissingDimensions, got %v", err)
	}
	if _, err := FromImage(nil); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestErrorMessages(t *testing.T) {
	de := &DecodeError{Index: 3, Route: RouteFast, Kind: ErrCodec, Err: errors.New("bad huffman")}
	if got, want := de.Error(), "input 3 (fast path): codec failure: bad huffman"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if got, want := (&DecodeError{Index: -1, Route: RouteGeneric}).Error(), "generic path: codec failure"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	ge := &GridError{Row: 1, Col: 0, Expected: Size{W: 4, H: 3}, Actual: Size{W: 3, H: 3}}
	if got, want := ge.Error(), "inconsistent grid: tile at row 1, col 0 is 3x3, expected 4x3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
