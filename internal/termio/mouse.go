package termio

import (
	"fmt"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/selection"
)

// MouseEvent is a pointer event in viewport cells.
type MouseEvent struct {
	Kind   mouse.Kind
	Button mouse.Button
	X, Y   int
	Mods   mouse.Modifier
}

// Mouse handles a pointer event.
func (w *Widget) Mouse(ev MouseEvent) {
	w.do(func() {
		ev.X = max(0, min(ev.X, w.cols-1))
		ev.Y = max(0, min(ev.Y, w.rows-1))
		switch ev.Kind {
		case mouse.KindDown:
			w.mouseDown(ev)
		case mouse.KindUp:
			w.mouseUp(ev)
		case mouse.KindMove:
			w.mouseMove(ev)
		case mouse.KindWheelUp, mouse.KindWheelDown:
			w.mouseWheel(ev)
		}
	})
}

// report offers ev to mouse reporting and reports whether it was
// consumed.
func (w *Widget) report(ev MouseEvent) bool {
	seq, handled := w.reporter.Report(mouse.Event{
		Kind:      ev.Kind,
		Button:    ev.Button,
		X:         ev.X,
		Y:         ev.Y,
		Modifiers: ev.Mods,
	}, w.buf.MouseState())
	if len(seq) > 0 {
		w.write(seq)
		w.observer.MouseReported(ev.Kind.String())
	}
	return handled
}

func (w *Widget) mouseDown(ev MouseEvent) {
	cx, cy := ev.X, ev.Y
	y := cy - w.scroll
	click := w.clicks.Record(ev.Button, mouse.Position{X: cx, Y: cy}, w.now())
	w.didClick = false

	if ev.Button == mouse.ButtonRight {
		switch {
		case ev.Mods.Has(mouse.ModCtrl):
			w.notify(NotifyOptions, "")
			return
		case ev.Mods.Has(mouse.ModShift):
			w.debug = !w.debug
			w.logger.Info("debug rendering", "on", w.debug)
			w.queueRender()
			return
		}
	}
	if w.blockClicked(ev) {
		return
	}
	if w.report(ev) {
		return
	}

	switch ev.Button {
	case mouse.ButtonLeft:
		if w.onLink(cx, cy) {
			w.press = linkPress{down: true, x: cx, y: cy}
		}
		switch click {
		case mouse.ClickTriple:
			w.sel.SelectLine(y)
			w.takeIfActive()
			w.didClick = true
		case mouse.ClickDouble:
			if ev.Mods.Has(mouse.ModShift) && w.sel.RestoreBackup() {
				w.sel.FixDoubleWidth()
				w.sel.ExtendWord(cx, y)
			} else {
				w.sel.SelectWord(cx, y)
			}
			w.takeIfActive()
			w.didClick = true
		default:
			w.beginSelection(ev, cx, y)
		}
		w.queueRender()
	case mouse.ButtonMiddle:
		if err := w.pasteSelection(selection.Primary); err != nil {
			w.logger.Debug("paste primary", "err", err)
		}
	case mouse.ButtonRight:
		w.notify(NotifyOptions, "")
	}
}

func (w *Widget) beginSelection(ev MouseEvent, cx, y int) {
	if h := w.handleAt(cx, y); h != selection.HandleNone {
		w.sel.GrabHandle(h, cx, y)
		return
	}
	mode := selection.ModeStream
	if ev.Mods.Any() {
		mode = selection.ModeBox
	}
	if w.sel.Begin(cx, y, mode) {
		w.didClick = true
	}
	// Box selections, like stream ones, show only once dragged.
	w.sel.Active = false
}

// handleAt returns the selection handle at buffer cell (x, y): the
// top-left handle sits on the first selected cell and the bottom-right
// one on the last.
func (w *Widget) handleAt(x, y int) selection.Handle {
	if !w.sel.Active {
		return selection.HandleNone
	}
	start, end := w.sel.Bounds()
	p := selection.Point{X: x, Y: y}
	var corner selection.Point
	switch p {
	case start:
		corner = start
	case end:
		corner = end
	default:
		return selection.HandleNone
	}
	if corner == w.sel.Start {
		return selection.HandleStart
	}
	return selection.HandleEnd
}

func (w *Widget) takeIfActive() {
	if !w.sel.Active {
		return
	}
	if err := w.takeSelection(selection.Primary); err != nil {
		w.logger.Debug("take primary", "err", err)
	}
}

func (w *Widget) mouseUp(ev MouseEvent) {
	cx, cy := ev.X, ev.Y
	if w.report(ev) {
		return
	}
	if ev.Button == mouse.ButtonLeft {
		w.linkReleased(cx, cy, ev.Mods.Has(mouse.ModCtrl))
	}
	if w.press.dnd {
		w.press.dnd = false
		return
	}
	if !w.sel.Making {
		return
	}
	if w.sel.Release(cx, cy-w.scroll) {
		w.didClick = true
		w.queueRender()
		w.takeIfActive()
	}
}

func (w *Widget) mouseMove(ev MouseEvent) {
	cx, cy := ev.X, ev.Y
	moved := cx != w.mouseX || cy != w.mouseY
	w.mouseX, w.mouseY = cx, cy
	if w.report(ev) {
		return
	}
	if w.press.down && w.hovering && w.pastThreshold(cx, cy) {
		w.press.down = false
		w.press.dnd = true
		w.logger.Debug("link drag", "link", w.hover.Text)
	}
	if w.press.dnd {
		w.sel.Clear()
		w.queueRender()
		return
	}
	if w.sel.Making {
		w.sel.Extend(cx, cy-w.scroll)
		w.queueRender()
	}
	if moved {
		w.armHover()
	}
}

func (w *Widget) mouseWheel(ev MouseEvent) {
	if ev.Mods.Any() {
		return
	}
	if w.buf.MouseState().Mode == mouse.ModeOff {
		step := WheelStep
		if ev.Kind == mouse.KindWheelDown {
			step = -step
		}
		w.setScroll(w.scroll + step)
		return
	}
	w.report(ev)
}

// blockClicked lets a block under the pointer take a press. Thumbnails
// open their link or pop up their media; interactive graphics get a
// mouse signal.
func (w *Widget) blockClicked(ev MouseEvent) bool {
	b, ok := w.blocks.At(ev.X, ev.Y)
	if !ok {
		return false
	}
	if g, ok := b.Graphic(); ok {
		g.Emit(fmt.Sprintf("mouse,down,%d", ev.Button), "")
		return true
	}
	if b.Kind != block.KindThumb || ev.Button != mouse.ButtonLeft {
		return false
	}
	c := w.blocks.Clicked(b)
	if c.Helper == "" {
		w.notify(NotifyPopup, c.Target)
		return true
	}
	a, err := w.links.Run(c.Helper, c.Target)
	if err != nil {
		w.logger.Warn("thumbnail helper", "cmd", a.Command, "err", err)
	}
	return true
}
