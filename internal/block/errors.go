package block

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockNotFound indicates no block is registered under an id or chid.
	ErrBlockNotFound = errors.New("block not found")

	// ErrTooLarge indicates a block size of 512 cells or more on an axis.
	ErrTooLarge = errors.New("block too large")

	// ErrBadSize indicates a block with a zero or negative dimension.
	ErrBadSize = errors.New("invalid block size")

	// ErrShortRecord indicates a command record ended before all its fields.
	ErrShortRecord = errors.New("short command record")

	// ErrMalformed indicates a command envelope that could not be parsed.
	ErrMalformed = errors.New("malformed command")

	// ErrAssetNotFound indicates the asset behind a block could not be
	// resolved; activation is retried on the next frame.
	ErrAssetNotFound = errors.New("block asset not found")

	// ErrGroupNotFound indicates an interactive block names no group, or a
	// group its file does not define.
	ErrGroupNotFound = errors.New("graphic group not found")
)

// CommandError describes a terminal command that could not be applied.
type CommandError struct {
	Cmd string
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("block command %q: %v", e.Cmd, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
