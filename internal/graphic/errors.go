package graphic

import "errors"

var (
	// ErrClosed is returned when using a destroyed graphic.
	ErrClosed = errors.New("graphic is closed")

	// ErrBadMessage indicates a script sent a message with the wrong shape.
	ErrBadMessage = errors.New("malformed graphic message")
)
