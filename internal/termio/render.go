package termio

import (
	"github.com/dshills/termcore/internal/compositor"
	"github.com/dshills/termcore/internal/link"
	"github.com/dshills/termcore/internal/selection"
)

// Frame is a composed view of the widget. Cells is a copy of the display
// grid and stays valid after delivery.
type Frame struct {
	Seq        uint64
	Cols, Rows int
	Scroll     int
	Cells      [][]compositor.Cell
	// Spans are the rows that changed since the previous frame.
	Spans   []compositor.Span
	Overlay compositor.Overlay
	Box     bool
	// Link is the hovered link in viewport rows, valid when HasLink.
	Link    link.Link
	HasLink bool
	Blocks  []Placement
	Debug   bool
	Reverse bool
}

// Render composes a frame now.
func (w *Widget) Render() {
	w.do(w.compose)
}

// queueRender asks for a frame on the next render tick.
func (w *Widget) queueRender() {
	w.renderSlot.Schedule(RenderInterval, func() {
		w.do(w.compose)
	})
}

func (w *Widget) compose() {
	w.renderSlot.Cancel()
	reverse := w.buf.Reverse()
	spans := w.comp.Compose(w.buf, w.rows, w.cols, w.scroll, reverse, w.debug)

	cx, cy := w.buf.Cursor()
	cur := compositor.CursorState{X: cx, Y: cy, Hidden: w.buf.CursorHidden()}
	sel := compositor.SelectionState{
		Active: w.sel.Active,
		Box:    w.sel.Mode == selection.ModeBox,
		Start:  compositor.Point{X: w.sel.Start.X, Y: w.sel.Start.Y},
		End:    compositor.Point{X: w.sel.End.X, Y: w.sel.End.Y},
	}
	switch w.sel.Grab {
	case selection.HandleStart:
		sel.Grab = compositor.HandleTopLeft
	case selection.HandleEnd:
		sel.Grab = compositor.HandleBottomRight
	}

	grid := w.comp.Grid()
	gc, gr := grid.Size()
	cells := make([][]compositor.Cell, gr)
	for y := range cells {
		cells[y] = append([]compositor.Cell(nil), grid.Row(y)...)
	}

	w.seq++
	f := &Frame{
		Seq:     w.seq,
		Cols:    gc,
		Rows:    gr,
		Scroll:  w.scroll,
		Cells:   cells,
		Spans:   spans,
		Overlay: compositor.ComputeOverlay(cur, sel, w.scroll, gc),
		Box:     sel.Box,
		Blocks:  w.placements(),
		Debug:   w.debug,
		Reverse: reverse,
	}
	if w.hovering {
		f.HasLink = true
		f.Link = w.hover
		f.Link.Y1 += w.scroll
		f.Link.Y2 += w.scroll
	}
	w.frame = f
	w.notify(NotifyChanged, "")
	w.armHover()
}

func (w *Widget) bufferChanged() {
	w.do(func() {
		if w.jumpOnChange {
			w.scroll = 0
		}
		w.queueRender()
	})
}

func (w *Widget) bufferScrolled() {
	w.do(func() {
		changed := false
		if !w.jumpOnChange && w.scroll > 0 {
			w.scroll = min(w.scroll+1, w.buf.Backscroll())
			changed = true
		}
		if w.sel.Active {
			w.sel.Scrolled()
			changed = true
		}
		if changed {
			w.queueRender()
		}
	})
}

func (w *Widget) cancelSelection() {
	w.do(func() {
		if w.sel.Active {
			w.sel.Clear()
			w.queueRender()
		}
	})
}

func (w *Widget) command(cmd string) {
	w.do(func() {
		consumed, err := w.blocks.Command(cmd)
		if err != nil {
			w.logger.Debug("terminal command", "err", err)
		}
		if !consumed && err == nil {
			w.notify(NotifyCommand, cmd)
		}
	})
}
