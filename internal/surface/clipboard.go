package surface

import (
	"sync"

	"github.com/atotto/clipboard"

	"github.com/dshills/termcore/internal/selection"
	"github.com/dshills/termcore/internal/termio"
)

// Clipboard is the system clipboard. Calls are serialized because the
// PRIMARY switch is package state of the clipboard library.
type Clipboard struct {
	mu          sync.Mutex
	read        func() (string, error)
	write       func(string) error
	unsupported func() bool
	primary     bool
	// local holds PRIMARY where the platform has none.
	local string
}

var _ termio.Clipboard = (*Clipboard)(nil)

// NewClipboard returns the system clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{
		read:        clipboard.ReadAll,
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
		primary:     hasPrimary,
	}
}

// Get implements termio.Clipboard.
func (c *Clipboard) Get(kind selection.Kind) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == selection.Primary && !c.primary {
		return c.local, nil
	}
	if c.unsupported() {
		return "", ErrClipboardUnsupported
	}
	if kind == selection.Primary {
		usePrimary(true)
		defer usePrimary(false)
	}
	return c.read()
}

// Set implements termio.Clipboard.
func (c *Clipboard) Set(kind selection.Kind, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == selection.Primary && !c.primary {
		c.local = text
		return nil
	}
	if c.unsupported() {
		return ErrClipboardUnsupported
	}
	if kind == selection.Primary {
		usePrimary(true)
		defer usePrimary(false)
	}
	return c.write(text)
}
