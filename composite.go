package rgbatlas

import (
	"fmt"
	"math"
	"math/bits"
)

// GridLayout is the geometry of an atlas derived from its tiles.
type GridLayout struct {
	Columns int
	Rows    int
	// Main is the size of interior tiles, taken from the first tile.
	Main Size
	// Last is the size of the remainder tile, taken from the final tile.
	Last Size

	TotalWidth  int
	TotalHeight int
}

// Layout validates the column count and derives the atlas geometry.
// The first and last tiles must have positive dimensions, other tiles are
// checked by CheckGrid.
func Layout(images []*Image, columns int) (GridLayout, error) {
	n := len(images)
	if n == 0 {
		return GridLayout{}, ErrEmpty
	}
	if err := checkColumns(n, columns); err != nil {
		return GridLayout{}, err
	}

	l := GridLayout{
		Columns: columns,
		Rows:    n / columns,
		Main:    images[0].Size(),
		Last:    images[n-1].Size(),
	}
	if l.Main.W <= 0 || l.Main.H <= 0 {
		return GridLayout{}, fmt.Errorf("%w: tile 0 is %s", ErrMissingDimensions, l.Main)
	}
	if l.Last.W <= 0 || l.Last.H <= 0 {
		return GridLayout{}, fmt.Errorf("%w: tile %d is %s", ErrMissingDimensions, n-1, l.Last)
	}

	tw, ok := mulAdd(l.Main.W, columns-1, l.Last.W)
	if !ok {
		return GridLayout{}, fmt.Errorf("%w: width %d*%d+%d", ErrSizeOverflow, l.Main.W, columns-1, l.Last.W)
	}
	th, ok := mulAdd(l.Main.H, l.Rows-1, l.Last.H)
	if !ok {
		return GridLayout{}, fmt.Errorf("%w: height %d*%d+%d", ErrSizeOverflow, l.Main.H, l.Rows-1, l.Last.H)
	}
	l.TotalWidth, l.TotalHeight = tw, th

	if _, ok := byteLen(tw, th); !ok {
		return GridLayout{}, fmt.Errorf("%w: %dx%d RGBA8", ErrSizeOverflow, tw, th)
	}

	return l, nil
}

// Expected returns the size a tile in the given cell must have.
func (l GridLayout) Expected(row, col int) Size {
	s := l.Main
	if col == l.Columns-1 {
		s.W = l.Last.W
	}
	if row == l.Rows-1 {
		s.H = l.Last.H
	}
	return s
}

// CheckGrid verifies every tile against its cell, reporting the first mismatch in
// row-major order.
func (l GridLayout) CheckGrid(images []*Image) error {
	for i, img := range images {
		row, col := i/l.Columns, i%l.Columns
		want := l.Expected(row, col)
		if got := img.Size(); got != want {
			return &GridError{Row: row, Col: col, Expected: want, Actual: got}
		}
	}
	return nil
}

// Composite places images into a grid of the given number of columns and returns
// a new atlas image. Images are read in row-major order and never modified.
func Composite(images []*Image, columns int) (*Image, error) {
	l, err := Layout(images, columns)
	if err != nil {
		return nil, err
	}
	if err := l.CheckGrid(images); err != nil {
		return nil, err
	}

	Logger().Debug("compositing atlas",
		"tiles", len(images), "columns", l.Columns, "rows", l.Rows,
		"main", l.Main.String(), "last", l.Last.String(),
		"width", l.TotalWidth, "height", l.TotalHeight)

	size, _ := byteLen(l.TotalWidth, l.TotalHeight)
	out := &Image{
		Pix:    make([]byte, size),
		Width:  l.TotalWidth,
		Height: l.TotalHeight,
	}

	dstStride := l.TotalWidth * BytesPerPixel
	for i, img := range images {
		img.mustValid()
		row, col := i/l.Columns, i%l.Columns
		off := ((row*l.Main.H)*l.TotalWidth + col*l.Main.W) * BytesPerPixel
		copyRGBA8(out.Pix[off:], dstStride, img.Width, img.Height, img.Pix)
	}

	return out, nil
}

// copyRGBA8 copies a packed w*h RGBA8 source into dst rows spaced dstStride bytes apart.
func copyRGBA8(dst []byte, dstStride, w, h int, src []byte) {
	rowSize := w * BytesPerPixel
	for y := 0; y < h; y++ {
		copy(dst[y*dstStride:y*dstStride+rowSize], src[y*rowSize:(y+1)*rowSize])
	}
}

func checkColumns(n, columns int) error {
	if columns <= 0 || n%columns != 0 {
		return fmt.Errorf("%w: %d columns for %d images", ErrInvalidColumnCount, columns, n)
	}
	return nil
}

// mulAdd returns a*b+c when all operands are non-negative and the result fits int.
func mulAdd(a, b, c int) (int, bool) {
	if a < 0 || b < 0 || c < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 {
		return 0, false
	}
	sum, carry := bits.Add64(lo, uint64(c), 0)
	if carry != 0 || sum > math.MaxInt {
		return 0, false
	}
	return int(sum), true
}

// byteLen returns w*h*4 when it fits int.
func byteLen(w, h int) (int, bool) {
	px, ok := mulAdd(w, h, 0)
	if !ok {
		return 0, false
	}
	return mulAdd(px, BytesPerPixel, 0)
}
