package theme

import "errors"

var (
	// ErrIndexRange indicates a palette index outside the palette.
	ErrIndexRange = errors.New("palette index out of range")

	// ErrBadColor indicates a color string that could not be parsed.
	ErrBadColor = errors.New("invalid color")
)
