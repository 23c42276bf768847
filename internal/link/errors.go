package link

import "errors"

var (
	// ErrNoLink indicates a string that is not a URL, path or email.
	ErrNoLink = errors.New("not a link")

	// ErrNoHelper indicates an action with no command to run.
	ErrNoHelper = errors.New("no helper command")
)
