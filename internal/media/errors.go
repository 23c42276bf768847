package media

import "errors"

var (
	// ErrNotFound indicates a local media source does not exist.
	ErrNotFound = errors.New("media source not found")

	// ErrEmptySource indicates an empty media source.
	ErrEmptySource = errors.New("empty media source")
)
