package compositor

import (
	"time"

	"github.com/dshills/termcore/internal/cellbuf"
)

// Debug mode marker colors.
const (
	debugFg cellbuf.Color = 8
	debugBg cellbuf.Color = 4
)

// Source is a cell buffer that can be read in one frozen scope.
type Source interface {
	Read(fn func(cellbuf.Rows))
}

// BlockActivator runs block lifecycles for a composition pass.
type BlockActivator interface {
	BeginFrame()
	// Activate reports block id as visible with its top-left cell at (x, y).
	Activate(id, x, y int)
	EndFrame()
}

// Observer receives per-frame statistics.
type Observer interface {
	FrameComposed(spans, cells int, d time.Duration)
}

type nopBlocks struct{}

func (nopBlocks) BeginFrame()         {}
func (nopBlocks) Activate(_, _, _ int) {}
func (nopBlocks) EndFrame()           {}

type nopObserver struct{}

func (nopObserver) FrameComposed(int, int, time.Duration) {}

// Option configures a Compositor.
type Option func(*Compositor)

// WithBlocks sets the block activator.
func WithBlocks(b BlockActivator) Option {
	return func(c *Compositor) {
		if b != nil {
			c.blocks = b
		}
	}
}

// WithObserver sets the frame observer.
func WithObserver(o Observer) Option {
	return func(c *Compositor) {
		if o != nil {
			c.observer = o
		}
	}
}

// Compositor owns the display grid and updates it from a cell buffer.
type Compositor struct {
	grid     *Grid
	blocks   BlockActivator
	observer Observer
}

// New creates a compositor with a cols x rows grid.
func New(cols, rows int, opts ...Option) *Compositor {
	c := &Compositor{
		grid:     NewGrid(cols, rows),
		blocks:   nopBlocks{},
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grid returns the display grid.
func (c *Compositor) Grid() *Grid {
	return c.grid
}

// Compose updates the grid from src and returns the changed spans, at
// most one per row. Row y of the grid shows buffer row y-scroll.
func (c *Compositor) Compose(src Source, rows, cols, scroll int, reverse, debug bool) []Span {
	start := time.Now()
	c.grid.Resize(cols, rows)
	cols, rows = c.grid.Size()

	c.blocks.BeginFrame()
	var spans []Span
	cells := 0
	src.Read(func(buf cellbuf.Rows) {
		for y := 0; y < rows; y++ {
			if sp, ok := c.composeRow(buf.Row(y-scroll), y, cols, reverse, debug); ok {
				spans = append(spans, sp)
				cells += sp.Len
			}
		}
	})
	c.blocks.EndFrame()

	c.observer.FrameComposed(len(spans), cells, time.Since(start))
	return spans
}

// blockCell is what a cell covered by a block displays.
var blockCell = Cell{Fg: cellbuf.ColorInvis, Bg: cellbuf.ColorInvis}

func (c *Compositor) composeRow(src []cellbuf.Cell, y, cols int, reverse, debug bool) (Span, bool) {
	tc := c.grid.cells[y]
	ch1, ch2 := -1, 0
	mark := func(x int) {
		if ch1 < 0 {
			ch1 = x
		}
		ch2 = x
	}

	blankBg := cellbuf.ColorInvis
	if reverse {
		blankBg = cellbuf.ColorInverseBg
	}

	for x := 0; x < cols; x++ {
		d := &tc[x]
		if x >= len(src) {
			if d.Rune != 0 || d.Bg != cellbuf.ColorInvis || d.BgExt {
				mark(x)
			}
			d.Rune = 0
			d.Bg = blankBg
			d.BgExt = false
			d.DoubleWidth = false
			continue
		}

		cell := src[x]
		switch {
		case cell.Block > 0:
			if *d != blockCell {
				mark(x)
			}
			*d = blockCell
			c.blocks.Activate(cell.Block, x-cell.BX, y-cell.BY)
			continue

		case cell.Has(cellbuf.AttrInvisible):
			if d.Rune != 0 || d.Bg != cellbuf.ColorInvis || d.BgExt {
				mark(x)
			}
			d.Rune = 0
			d.Bg = blankBg
			d.BgExt = false
			d.DoubleWidth = cell.Has(cellbuf.AttrDoubleWidth)

		default:
			next := render(cell, reverse)
			underline := cell.Has(cellbuf.AttrUnderline)
			strike := cell.Has(cellbuf.AttrStrike)
			if d.Rune != next.Rune || d.Fg != next.Fg || d.Bg != next.Bg ||
				d.FgExt != next.FgExt || d.BgExt != next.BgExt ||
				d.Underline != underline || d.Strike != strike || debug {
				mark(x)
			}
			if debug {
				nl := cell.Has(cellbuf.AttrNewline)
				wrapped := cell.Has(cellbuf.AttrAutowrapped)
				next.Strike = nl
				next.Underline = wrapped
				if nl || wrapped {
					next.Fg, next.Bg, next.Rune = debugFg, debugBg, '!'
				}
			}
			*d = next
		}

		if d.DoubleWidth && d.Rune == 0 && ch2 == x-1 {
			ch2 = x
		}
	}

	if ch1 < 0 {
		return Span{}, false
	}
	return Span{Row: y, Start: ch1, Len: ch2 - ch1 + 1}, true
}

// render computes the display form of a visible text cell.
func render(cell cellbuf.Cell, reverse bool) Cell {
	bold := cell.Has(cellbuf.AttrBold)
	faint := cell.Has(cellbuf.AttrFaint)
	fg, bg := cell.Fg, cell.Bg
	out := Cell{
		Rune:        cell.Rune,
		Underline:   cell.Has(cellbuf.AttrUnderline),
		Strike:      cell.Has(cellbuf.AttrStrike),
		DoubleWidth: cell.Has(cellbuf.AttrDoubleWidth),
	}

	if cell.Has(cellbuf.AttrInverse) != reverse {
		if fg == cellbuf.ColorDef {
			fg = cellbuf.ColorInverseBg
		}
		if bg == cellbuf.ColorDef {
			bg = cellbuf.ColorInverse
		}
		fg, bg = bg, fg
		if bold {
			fg += cellbuf.BoldOffset
			bg += cellbuf.BoldOffset
		}
		if faint {
			fg += cellbuf.FaintOffset
			bg += cellbuf.FaintOffset
		}
		if cell.Has(cellbuf.AttrFgIntense) {
			fg += cellbuf.IntenseOffset
		}
		if cell.Has(cellbuf.AttrBgIntense) {
			bg += cellbuf.IntenseOffset
		}
		out.Fg, out.Bg = fg, bg
		return out
	}

	out.FgExt = cell.Has(cellbuf.AttrFg256)
	out.BgExt = cell.Has(cellbuf.AttrBg256)
	if !out.FgExt && bold {
		fg += cellbuf.BoldOffset
	}
	if !out.BgExt && bg == cellbuf.ColorDef {
		bg = cellbuf.ColorInvis
	}
	if faint {
		if !out.FgExt {
			fg += cellbuf.FaintOffset
		}
		if !out.BgExt {
			bg += cellbuf.FaintOffset
		}
	}
	if cell.Has(cellbuf.AttrFgIntense) {
		fg += cellbuf.IntenseOffset
	}
	if cell.Has(cellbuf.AttrBgIntense) {
		bg += cellbuf.IntenseOffset
	}
	if (cell.Rune == ' ' || cell.Rune == 0) && !out.Strike && !out.Underline {
		fg = cellbuf.ColorInvis
	}
	out.Fg, out.Bg = fg, bg
	return out
}
