package termio

import (
	"strings"

	"github.com/dshills/termcore/internal/selection"
)

// Copy puts the selection on kind.
func (w *Widget) Copy(kind selection.Kind) error {
	var err error
	w.do(func() {
		err = w.takeSelection(kind)
	})
	return err
}

// Paste writes the contents of kind to the program.
func (w *Widget) Paste(kind selection.Kind) error {
	var err error
	w.do(func() {
		err = w.pasteSelection(kind)
	})
	return err
}

// SelectionText returns what copying the selection would copy.
func (w *Widget) SelectionText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectionText()
}

// selectionText is the text of the selection. With nothing selected
// and the pointer over a link, the link is the selection.
func (w *Widget) selectionText() string {
	var start, end selection.Point
	if w.sel.Active {
		start, end = w.sel.Bounds()
	}
	if w.sel.Mode != selection.ModeBox && start == (selection.Point{}) && end == (selection.Point{}) && w.hovering {
		return w.hover.Text
	}
	if !w.sel.Active {
		return ""
	}
	return w.sel.Text()
}

func (w *Widget) takeSelection(kind selection.Kind) error {
	text := w.selectionText()
	if text == "" {
		return ErrEmptySelection
	}
	if w.clip == nil {
		return ErrNoClipboard
	}
	if err := w.clip.Set(kind, text); err != nil {
		w.logger.Warn("set selection", "kind", kind.String(), "err", err)
		return err
	}
	w.selReg.Take(w, kind, text)
	return nil
}

func (w *Widget) pasteSelection(kind selection.Kind) error {
	if w.clip == nil {
		return ErrNoClipboard
	}
	text, err := w.clip.Get(kind)
	if err != nil {
		w.logger.Warn("get selection", "kind", kind.String(), "err", err)
		return err
	}
	if held, ok := w.selReg.Text(kind); ok && held != text {
		w.selReg.Lost(kind)
	}
	if text == "" {
		return nil
	}
	w.write([]byte(strings.ReplaceAll(text, "\n", "\r")))
	return nil
}

func (w *Widget) write(p []byte) {
	if _, err := w.buf.Write(p); err != nil {
		w.logger.Debug("write to program", "err", err)
	}
}

// SelectionLost implements selection.Owner.
func (w *Widget) SelectionLost(kind selection.Kind) {
	w.sched.Post(func() {
		w.do(func() {
			if w.sel.Active {
				w.sel.Clear()
				w.queueRender()
			}
		})
	})
}

// ReassertSelection implements selection.Owner.
func (w *Widget) ReassertSelection(kind selection.Kind, text string) {
	w.sched.Post(func() {
		w.do(func() {
			if w.clip == nil || text == "" {
				return
			}
			if err := w.clip.Set(kind, text); err != nil {
				w.logger.Warn("reassert selection", "kind", kind.String(), "err", err)
				return
			}
			w.selReg.Claim(w, kind, text)
		})
	})
}
