package termio

import (
	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/selection"
)

// Key identifies the keys the widget acts on itself. Everything else is
// KeyOther and only its Text reaches the program.
type Key uint8

const (
	KeyOther Key = iota
	// KeyRune is a printable key; KeyEvent.Rune holds it.
	KeyRune
	KeyEnter
	KeyHome
	KeyInsert
	KeyPgUp
	KeyPgDn
	KeyKPDivide
	// KeyModifier is a lone modifier key press.
	KeyModifier
)

// KeyEvent is a key press. Text is what the program receives for it,
// already encoded for the terminal.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods mouse.Modifier
	Text string
}

// Key handles a key press.
func (w *Widget) Key(ev KeyEvent) {
	w.do(func() {
		w.key(ev)
	})
}

func (w *Widget) key(ev KeyEvent) {
	ctrl := ev.Mods.Has(mouse.ModCtrl)
	alt := ev.Mods.Has(mouse.ModAlt)
	shift := ev.Mods.Has(mouse.ModShift)

	switch {
	case ctrl && !alt && !shift:
		if w.ctrlKey(ev) {
			return
		}
	case ctrl && shift && !alt:
		if w.ctrlShiftKey(ev) {
			return
		}
	case alt && !ctrl && !shift:
		switch ev.Key {
		case KeyHome:
			w.notify(NotifyCmdbox, "")
			return
		case KeyEnter:
			w.paste(selection.Primary)
			return
		}
	}
	if shift && w.shiftKey(ev, ctrl) {
		return
	}

	if w.jumpOnKeypress && ev.Key != KeyModifier && w.scroll != 0 {
		w.scroll = 0
		w.queueRender()
	}
	if ev.Text != "" {
		w.write([]byte(ev.Text))
	}
}

func (w *Widget) ctrlKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyPgUp:
		w.notify(NotifyPrev, "")
	case KeyPgDn:
		w.notify(NotifyNext, "")
	case KeyRune:
		if ev.Rune < '0' || ev.Rune > '9' {
			return false
		}
		w.notify(TabNotification(int(ev.Rune-'0')), "")
	default:
		return false
	}
	return true
}

func (w *Widget) ctrlShiftKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyPgUp:
		w.notify(NotifySplitH, "")
	case KeyPgDn:
		w.notify(NotifySplitV, "")
	case KeyHome:
		w.notify(NotifySelect, "")
	case KeyRune:
		switch ev.Rune {
		case 't', 'T':
			w.notify(NotifyNew, "")
		case 'c', 'C':
			w.copy(selection.Clipboard)
		case 'v', 'V':
			w.paste(selection.Clipboard)
		case 'f', 'F':
			w.notify(NotifyMiniviewToggle, "")
		default:
			return false
		}
	default:
		return false
	}
	return true
}

func (w *Widget) shiftKey(ev KeyEvent, ctrl bool) bool {
	by := max(w.rows-2, 1)
	switch ev.Key {
	case KeyPgUp:
		w.setScroll(w.scroll + by)
	case KeyPgDn:
		w.setScroll(w.scroll - by)
	case KeyInsert:
		if ctrl {
			w.paste(selection.Primary)
		} else {
			w.paste(selection.Clipboard)
		}
	case KeyKPDivide:
		w.copy(selection.Clipboard)
	default:
		return false
	}
	return true
}

func (w *Widget) copy(kind selection.Kind) {
	if err := w.takeSelection(kind); err != nil {
		w.logger.Debug("copy", "kind", kind.String(), "err", err)
	}
}

func (w *Widget) paste(kind selection.Kind) {
	if err := w.pasteSelection(kind); err != nil {
		w.logger.Debug("paste", "kind", kind.String(), "err", err)
	}
}
