package mouse

import (
	"fmt"
)

const (
	esc = 0x1b

	// legacyLimit bounds 0-based coordinates in the 7-bit encoding.
	legacyLimit = 0xff - ' '

	motionBit   = 32
	releaseCode = 3
	wheelUpCode = 64 + 1
	wheelDnCode = 64 + 2
)

// Encode converts a pointer event into a mouse report for the given
// protocol mode and extension.
//
// handled reports whether mouse reporting consumed the event. A consumed
// event may still produce no sequence: motion inside the same cell and
// wheel notches beyond the 7-bit range are swallowed silently. Callers
// must not assume one report per call.
func Encode(ev Event, mode Mode, ext Ext) ([]byte, bool) {
	if mode == ModeOff {
		return nil, false
	}
	switch ev.Kind {
	case KindDown:
		return encodeDown(ev, mode, ext)
	case KindUp:
		return encodeUp(ev, mode, ext)
	case KindMove:
		return encodeMove(ev, mode, ext)
	case KindWheelUp, KindWheelDown:
		return encodeWheel(ev, ext)
	default:
		return nil, false
	}
}

func encodeDown(ev Event, mode Mode, ext Ext) ([]byte, bool) {
	btn := buttonCode(ev.Button)
	mods := ev.Modifiers.bits()
	switch ext {
	case ExtNone:
		if !inLegacyRange(ev) {
			return nil, false
		}
		if mode == ModeX10 {
			// X10 reports buttons 1-3 only, without modifiers.
			if btn > 2 || btn < 0 {
				return nil, false
			}
			return encodeCode(btn, ev.X, ev.Y, ext, false), true
		}
	case ExtSGR:
		return sgr(btn|mods, ev.X, ev.Y, false), true
	}
	if btn > 2 || btn < 0 {
		btn = 0
	}
	return encodeCode(btn|mods, ev.X, ev.Y, ext, false), true
}

// encodeUp reports a release. Every extension sends the release code
// whichever button went up.
func encodeUp(ev Event, mode Mode, ext Ext) ([]byte, bool) {
	if mode == ModeX10 {
		return nil, false
	}
	code := releaseCode | ev.Modifiers.bits()
	if ext == ExtSGR {
		return sgr(code, ev.X, ev.Y, true), true
	}
	if ext == ExtNone && !inLegacyRange(ev) {
		return nil, false
	}
	return encodeCode(code, ev.X, ev.Y, ext, false), true
}

func encodeMove(ev Event, mode Mode, ext Ext) ([]byte, bool) {
	switch mode {
	case ModeNormalButtonMove:
		if ev.Button == ButtonNone {
			return nil, false
		}
	case ModeAnyMove:
	default:
		return nil, false
	}
	if !ev.Changed {
		return nil, true
	}
	btn := buttonCode(ev.Button)
	mods := ev.Modifiers.bits() | motionBit
	switch {
	case btn < 0:
		btn = releaseCode
	case ext == ExtSGR:
	case btn > 2:
		btn = 0
	}
	if ext == ExtSGR {
		return sgr(btn|mods, ev.X, ev.Y, false), true
	}
	if ext == ExtNone && !inLegacyRange(ev) {
		return nil, false
	}
	return encodeCode(btn|mods, ev.X, ev.Y, ext, false), true
}

func encodeWheel(ev Event, ext Ext) ([]byte, bool) {
	code := wheelUpCode
	if ev.Kind == KindWheelDown {
		code = wheelDnCode
	}
	switch ext {
	case ExtSGR:
		return sgr(code, ev.X, ev.Y, false), true
	case ExtUTF8:
		// The UTF-8 extension carries its own wheel bytes.
		b := byte('a')
		if ev.Kind == KindWheelDown {
			b = '`'
		}
		return encodeCode(int(b), ev.X, ev.Y, ext, true), true
	case ExtNone:
		if !inLegacyRange(ev) {
			return nil, true
		}
	}
	return encodeCode(code, ev.X, ev.Y, ext, false), true
}

// buttonCode returns the protocol number of a button, -1 for none.
func buttonCode(b Button) int {
	return int(b) - 1
}

func inLegacyRange(ev Event) bool {
	return ev.X < legacyLimit && ev.Y < legacyLimit && ev.X >= 0 && ev.Y >= 0
}

// encodeCode writes a report in one of the byte-oriented or urxvt
// encodings. raw reports a code that is already offset by ' '.
func encodeCode(code, x, y int, ext Ext, raw bool) []byte {
	if !raw {
		code += ' '
	}
	switch ext {
	case ExtURXVT:
		return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", code, x+1, y+1))
	case ExtUTF8:
		buf := []byte{esc, '[', 'M', byte(code)}
		buf = appendUTF8Coord(buf, x)
		buf = appendUTF8Coord(buf, y)
		return buf
	default:
		return []byte{esc, '[', 'M', byte(code), byte(x + 1 + ' '), byte(y + 1 + ' ')}
	}
}

// appendUTF8Coord appends a 0-based coordinate in the UTF-8 extension
// format: values above 127 take two bytes.
func appendUTF8Coord(buf []byte, c int) []byte {
	v := c + 1 + ' '
	if v > 127 {
		return append(buf, byte(0xc0+(v>>6)), byte(0x80+(v&0x3f)))
	}
	return append(buf, byte(v))
}

func sgr(code, x, y int, release bool) []byte {
	final := 'M'
	if release {
		final = 'm'
	}
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, x+1, y+1, final))
}
