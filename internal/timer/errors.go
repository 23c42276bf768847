package timer

import "errors"

var (
	// ErrStopped indicates the loop no longer accepts work.
	ErrStopped = errors.New("loop stopped")

	// ErrRunning indicates Run was called on a loop that is already running.
	ErrRunning = errors.New("loop already running")
)
