package surface

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/termio"
)

var buttonMasks = []struct {
	mask   tcell.ButtonMask
	button mouse.Button
}{
	{tcell.Button1, mouse.ButtonLeft},
	{tcell.Button3, mouse.ButtonMiddle},
	{tcell.Button2, mouse.ButtonRight},
}

// mouseState turns tcell's button masks into press, release and motion
// events.
type mouseState struct {
	held tcell.ButtonMask
}

func (m *mouseState) convert(e *tcell.EventMouse) []termio.MouseEvent {
	x, y := e.Position()
	mods := modifiers(e.Modifiers())
	btns := e.Buttons()

	var out []termio.MouseEvent
	ev := func(kind mouse.Kind, b mouse.Button) {
		out = append(out, termio.MouseEvent{Kind: kind, Button: b, X: x, Y: y, Mods: mods})
	}
	if btns&tcell.WheelUp != 0 {
		ev(mouse.KindWheelUp, mouse.ButtonNone)
	}
	if btns&tcell.WheelDown != 0 {
		ev(mouse.KindWheelDown, mouse.ButtonNone)
	}

	changed := false
	for _, bm := range buttonMasks {
		was, is := m.held&bm.mask != 0, btns&bm.mask != 0
		switch {
		case is && !was:
			ev(mouse.KindDown, bm.button)
			changed = true
		case was && !is:
			ev(mouse.KindUp, bm.button)
			changed = true
		}
	}
	m.held = btns & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	if !changed && btns&(tcell.WheelUp|tcell.WheelDown) == 0 {
		ev(mouse.KindMove, mouse.ButtonNone)
	}
	return out
}
