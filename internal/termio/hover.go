package termio

import (
	"errors"

	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/link"
)

func (w *Widget) armHover() {
	w.hoverSlot.Arm(HoverDelay, func() {
		w.do(w.probeLink)
	})
}

// probeLink finds the link under the pointer.
func (w *Widget) probeLink() {
	var (
		found link.Link
		ok    bool
	)
	y := w.mouseY - w.scroll
	w.buf.Read(func(rows cellbuf.Rows) {
		found, ok = link.Find(rows, w.mouseX, y)
	})
	if ok == w.hovering && (!ok || found == w.hover) {
		return
	}
	w.hover, w.hovering = found, ok
	w.queueRender()
}

// HoveredLink returns the link under the pointer, in buffer rows.
func (w *Widget) HoveredLink() (link.Link, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hover, w.hovering
}

// onLink reports whether viewport cell (x, y) is part of the hovered
// link.
func (w *Widget) onLink(x, y int) bool {
	return w.hovering && w.hover.Contains(x, y-w.scroll)
}

// pastThreshold reports whether the pointer moved further than the drag
// threshold since the link was pressed.
func (w *Widget) pastThreshold(x, y int) bool {
	dx := abs(x-w.press.x) * w.cellW
	dy := abs(y-w.press.y) * w.cellH
	return dx > w.dragThreshold || dy > w.dragThreshold
}

func (w *Widget) linkReleased(x, y int, ctrl bool) {
	if !w.press.down {
		return
	}
	w.press.down = false
	if w.pastThreshold(x, y) {
		return
	}
	w.ctrlClick = ctrl
	w.linkSlot.Arm(LinkDelay, func() {
		w.do(w.linkTimeout)
	})
}

func (w *Widget) linkTimeout() {
	if !w.didClick && w.hovering {
		w.activateLink(w.hover.Text, w.ctrlClick)
	}
	w.didClick = false
}

func (w *Widget) activateLink(text string, ctrl bool) {
	a, err := w.links.Activate(text, ctrl)
	switch {
	case err != nil && errors.Is(err, link.ErrNoHelper):
		w.logger.Debug("link helper", "cmd", a.Command, "err", err)
	case err != nil:
		w.logger.Warn("link activation failed", "link", text, "err", err)
	case a.Popup:
		w.notify(NotifyPopup, a.Target)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
