package rgbatlas

import (
	"errors"
	"fmt"
)

// Decode failures.
var (
	ErrFormatUnrecognized = errors.New("image format not recognized")
	ErrCodec              = errors.New("codec failure")
	ErrMissingDimensions  = errors.New("decoded image has no dimensions")
)

// Compositor failures.
var (
	ErrEmpty              = errors.New("no images to composite")
	ErrInvalidColumnCount = errors.New("invalid column count")
	ErrInconsistentGrid   = errors.New("inconsistent grid")
	ErrSizeOverflow       = errors.New("atlas size overflows addressable length")
)

// DecodeError describes a failed decode attempt of a single input.
type DecodeError struct {
	// Index is the position of the input in a batch, -1 for a single decode.
	Index int
	Route Route
	// Kind is one of ErrFormatUnrecognized, ErrCodec, ErrMissingDimensions.
	Kind error
	// Err is the diagnostic of the underlying decoder, may be nil.
	Err error
}

func (e *DecodeError) Error() string {
	msg := e.kind().Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Index >= 0 {
		return fmt.Sprintf("input %d (%s path): %s", e.Index, e.Route, msg)
	}
	return fmt.Sprintf("%s path: %s", e.Route, msg)
}

// Unwrap allows matching both the kind sentinel and the decoder diagnostic.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind()}
	}
	return []error{e.kind(), e.Err}
}

func (e *DecodeError) kind() error {
	if e.Kind == nil {
		return ErrCodec
	}
	return e.Kind
}

// GridError reports a tile that does not fit its grid cell.
type GridError struct {
	Row      int
	Col      int
	Expected Size
	Actual   Size
}

func (e *GridError) Error() string {
	return fmt.Sprintf("%s: tile at row %d, col %d is %s, expected %s",
		ErrInconsistentGrid, e.Row, e.Col, e.Actual, e.Expected)
}

func (e *GridError) Unwrap() error {
	return ErrInconsistentGrid
}

// codecError builds a DecodeError without input index, batch callers fill it in.
func codecError(route Route, kind, err error) *DecodeError {
	return &DecodeError{Index: -1, Route: route, Kind: kind, Err: err}
}
