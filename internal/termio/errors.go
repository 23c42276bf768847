package termio

import "errors"

var (
	// ErrNoClipboard indicates the widget has no clipboard to copy to or
	// paste from.
	ErrNoClipboard = errors.New("no clipboard")

	// ErrEmptySelection indicates there was nothing to copy.
	ErrEmptySelection = errors.New("empty selection")
)
