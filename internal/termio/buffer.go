package termio

import (
	"time"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/compositor"
	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/selection"
)

// Buffer is the virtual terminal the widget presents. *cellbuf.Screen
// implements it.
type Buffer interface {
	// Read calls fn with the buffer frozen.
	Read(fn func(cellbuf.Rows))
	Size() (cols, rows int)
	Resize(cols, rows int)
	// Backscroll returns the number of scrollback rows.
	Backscroll() int
	// Write sends bytes to the running program.
	Write(p []byte) (int, error)

	Blocks() *block.Registry
	ExpectBlock(repch rune, b *block.Block)
	SetBlockMode(on bool)

	Cursor() (x, y int)
	CursorHidden() bool
	Reverse() bool
	MouseState() mouse.State
	Title() string
	Icon() string

	SetHandlers(h cellbuf.Handlers)
}

var _ Buffer = (*cellbuf.Screen)(nil)

// Clipboard reads and writes the system selections.
type Clipboard interface {
	Get(kind selection.Kind) (string, error)
	Set(kind selection.Kind, text string) error
}

// Observer receives widget statistics. *metrics.Metrics implements it.
type Observer interface {
	compositor.Observer
	block.Observer
	MouseReported(kind string)
}

type nopObserver struct{}

func (nopObserver) FrameComposed(int, int, time.Duration) {}
func (nopObserver) ObjectCreated(block.Kind)              {}
func (nopObserver) ObjectDestroyed(block.Kind)            {}
func (nopObserver) EnvelopeSent(string)                   {}
func (nopObserver) MouseReported(string)                  {}
