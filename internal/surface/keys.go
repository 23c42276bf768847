package surface

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/termio"
)

// keySeqs are the xterm sequences for named keys.
var keySeqs = map[tcell.Key]string{
	tcell.KeyUp:      "\x1b[A",
	tcell.KeyDown:    "\x1b[B",
	tcell.KeyRight:   "\x1b[C",
	tcell.KeyLeft:    "\x1b[D",
	tcell.KeyHome:    "\x1b[H",
	tcell.KeyEnd:     "\x1b[F",
	tcell.KeyInsert:  "\x1b[2~",
	tcell.KeyDelete:  "\x1b[3~",
	tcell.KeyPgUp:    "\x1b[5~",
	tcell.KeyPgDn:    "\x1b[6~",
	tcell.KeyBacktab: "\x1b[Z",
	tcell.KeyF1:      "\x1bOP",
	tcell.KeyF2:      "\x1bOQ",
	tcell.KeyF3:      "\x1bOR",
	tcell.KeyF4:      "\x1bOS",
	tcell.KeyF5:      "\x1b[15~",
	tcell.KeyF6:      "\x1b[17~",
	tcell.KeyF7:      "\x1b[18~",
	tcell.KeyF8:      "\x1b[19~",
	tcell.KeyF9:      "\x1b[20~",
	tcell.KeyF10:     "\x1b[21~",
	tcell.KeyF11:     "\x1b[23~",
	tcell.KeyF12:     "\x1b[24~",
}

var keyKinds = map[tcell.Key]termio.Key{
	tcell.KeyEnter:  termio.KeyEnter,
	tcell.KeyHome:   termio.KeyHome,
	tcell.KeyInsert: termio.KeyInsert,
	tcell.KeyPgUp:   termio.KeyPgUp,
	tcell.KeyPgDn:   termio.KeyPgDn,
}

// Key converts a tcell key event to a widget key event with the bytes
// the program should receive for it.
func Key(e *tcell.EventKey) termio.KeyEvent {
	k := termio.KeyEvent{Key: termio.KeyOther, Mods: modifiers(e.Modifiers())}
	alt := k.Mods.Has(mouse.ModAlt)

	switch key := e.Key(); key {
	case tcell.KeyRune:
		k.Key = termio.KeyRune
		k.Rune = e.Rune()
		k.Text = string(k.Rune)
		if k.Mods.Has(mouse.ModCtrl) {
			if c, ok := control(k.Rune); ok {
				k.Text = string(c)
			}
		}
	case tcell.KeyEnter:
		k.Text = "\r"
	case tcell.KeyTab:
		k.Text = "\t"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		k.Text = "\x7f"
	case tcell.KeyEscape:
		k.Text = "\x1b"
	default:
		switch {
		case keySeqs[key] != "":
			k.Text = keySeqs[key]
		case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
			k.Key = termio.KeyRune
			k.Rune = rune('a' + key - tcell.KeyCtrlA)
			k.Mods |= mouse.ModCtrl
			k.Text = string(rune(1 + key - tcell.KeyCtrlA))
		case key == tcell.KeyCtrlSpace:
			k.Mods |= mouse.ModCtrl
			k.Text = "\x00"
		}
	}
	if kind, ok := keyKinds[e.Key()]; ok {
		k.Key = kind
	}
	if alt && k.Text != "" && k.Key == termio.KeyRune {
		k.Text = "\x1b" + k.Text
	}
	return k
}

// control returns the control character Ctrl+r produces.
func control(r rune) (rune, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 1, true
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 1, true
	case r >= '@' && r <= '_':
		return r - '@', true
	}
	return 0, false
}

func modifiers(m tcell.ModMask) mouse.Modifier {
	var out mouse.Modifier
	if m&tcell.ModShift != 0 {
		out |= mouse.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= mouse.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		out |= mouse.ModCtrl
	}
	return out
}

// QuitKey reports whether e is Ctrl+Q, however the terminal encoded it.
func QuitKey(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlQ {
		return true
	}
	return e.Key() == tcell.KeyRune && e.Modifiers()&tcell.ModCtrl != 0 && (e.Rune() == 'q' || e.Rune() == 'Q')
}
