package cellbuf

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/theme"
)

// maxCommand caps a terminal command envelope; longer ones are dropped.
const maxCommand = 64 * 1024

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeInter
	stateCSI
	stateCSIParam
	stateCSIInter
	stateOSC
	stateDCS
	stateCommand
)

// parser is a VT state machine writing into a Screen. It runs with the
// screen lock held.
type parser struct {
	s *Screen

	state  parserState
	params []int
	inter  []byte
	osc    []byte
	cmd    []byte

	utf8Buf [utf8.UTFMax]byte
	utf8Len int

	// touched is set when anything visible may have changed.
	touched bool
}

func newParser(s *Screen) *parser {
	return &parser{
		s:      s,
		params: make([]int, 0, 16),
		inter:  make([]byte, 0, 4),
		osc:    make([]byte, 0, 256),
	}
}

// parse consumes data and returns how many bytes it used. It stops right
// after a terminal command envelope so the command can be dispatched
// before later output is applied.
func (p *parser) parse(data []byte) int {
	for i, b := range data {
		if p.processByte(b) {
			return i + 1
		}
	}
	return len(data)
}

// processByte reports whether b completed a terminal command.
func (p *parser) processByte(b byte) bool {
	switch p.state {
	case stateGround:
		p.processGround(b)
	case stateEscape:
		p.processEscape(b)
	case stateEscapeInter:
		p.processEscapeInter(b)
	case stateCSI:
		p.processCSI(b)
	case stateCSIParam:
		p.processCSIParam(b)
	case stateCSIInter:
		p.processCSIInter(b)
	case stateOSC:
		p.processOSC(b)
	case stateDCS:
		p.processDCS(b)
	case stateCommand:
		return p.processCommand(b)
	}
	return false
}

func (p *parser) processGround(b byte) {
	if p.utf8Len > 0 {
		p.processUTF8(b)
		return
	}

	p.touched = true
	switch {
	case b == 0x1B:
		p.state = stateEscape
		p.params = p.params[:0]
		p.inter = p.inter[:0]
	case b == 0x07:
		p.s.emit(evBell, "")
	case b == 0x08:
		p.s.moveCursorRelative(-1, 0)
	case b == 0x09:
		p.s.tab()
	case b == 0x0A, b == 0x0B, b == 0x0C:
		p.s.newline()
	case b == 0x0D:
		p.s.carriageReturn()
	case b >= 0x20 && b < 0x7F:
		p.s.putRune(rune(b))
	case b >= 0xC0 && b < 0xF8:
		p.utf8Buf[0] = b
		p.utf8Len = 1
	case b >= 0x80 && b < 0xC0:
		p.s.putRune(utf8.RuneError)
	}
}

func (p *parser) processUTF8(b byte) {
	if b < 0x80 || b >= 0xC0 {
		p.utf8Len = 0
		p.s.putRune(utf8.RuneError)
		p.processGround(b)
		return
	}
	p.utf8Buf[p.utf8Len] = b
	p.utf8Len++
	if !utf8.FullRune(p.utf8Buf[:p.utf8Len]) {
		if p.utf8Len == utf8.UTFMax {
			p.utf8Len = 0
			p.s.putRune(utf8.RuneError)
		}
		return
	}
	r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
	p.utf8Len = 0
	p.s.putRune(r)
}

func (p *parser) processEscape(b byte) {
	p.state = stateGround
	switch {
	case b == '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.inter = p.inter[:0]
	case b == ']':
		p.state = stateOSC
		p.osc = p.osc[:0]
	case b == '}':
		p.state = stateCommand
		p.cmd = p.cmd[:0]
	case b == 'P':
		p.state = stateDCS
	case b == '7':
		p.s.saveCursor()
	case b == '8':
		p.s.restoreCursor()
	case b == 'D':
		p.s.lineFeed()
	case b == 'E':
		p.s.carriageReturn()
		p.s.newline()
	case b == 'M':
		p.s.reverseLineFeed()
	case b == 'c':
		p.s.reset()
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
		p.state = stateEscapeInter
	}
}

// Charset selection and other two-byte escapes are ignored.
func (p *parser) processEscapeInter(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
	default:
		p.state = stateGround
	}
}

func (p *parser) processCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.params = append(p.params, int(b-'0'))
		p.state = stateCSIParam
	case b == ';':
		p.params = append(p.params, 0, 0)
		p.state = stateCSIParam
	case b == '?', b == '>', b == '!':
		p.inter = append(p.inter, b)
	default:
		p.processCSIParam(b)
	}
}

func (p *parser) processCSIParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		last := len(p.params) - 1
		if p.params[last] < 1<<16 {
			p.params[last] = p.params[last]*10 + int(b-'0')
		}
	case b == ';' || b == ':':
		p.params = append(p.params, 0)
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
		p.state = stateCSIInter
	case b >= 0x40 && b <= 0x7E:
		p.handleCSI(b)
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *parser) processCSIInter(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
	case b >= 0x40 && b <= 0x7E:
		p.handleCSI(b)
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *parser) processOSC(b byte) {
	switch b {
	case 0x07, 0x9C:
		p.handleOSC()
		p.state = stateGround
	case 0x1B:
		p.handleOSC()
		p.state = stateEscape
	default:
		if len(p.osc) < maxCommand {
			p.osc = append(p.osc, b)
		}
	}
}

func (p *parser) processDCS(b byte) {
	switch b {
	case 0x1B:
		p.state = stateEscape
	case 0x9C:
		p.state = stateGround
	}
}

func (p *parser) processCommand(b byte) bool {
	if b != 0 {
		p.cmd = append(p.cmd, b)
		if len(p.cmd) > maxCommand {
			p.s.logger.Warn("terminal command too long, dropped", "len", len(p.cmd))
			p.cmd = p.cmd[:0]
			p.state = stateGround
		}
		return false
	}
	p.state = stateGround
	p.s.emit(evCommand, string(p.cmd))
	p.cmd = p.cmd[:0]
	return true
}

func (p *parser) handleCSI(final byte) {
	s := p.s
	private := len(p.inter) > 0 && p.inter[0] == '?'

	switch final {
	case 'A':
		s.moveCursorRelative(0, -p.param(0, 1))
	case 'B', 'e':
		s.moveCursorRelative(0, p.param(0, 1))
	case 'C', 'a':
		s.moveCursorRelative(p.param(0, 1), 0)
	case 'D':
		s.moveCursorRelative(-p.param(0, 1), 0)
	case 'E':
		s.carriageReturn()
		s.moveCursorRelative(0, p.param(0, 1))
	case 'F':
		s.carriageReturn()
		s.moveCursorRelative(0, -p.param(0, 1))
	case 'G', '`':
		s.cursorX = clamp(p.param(0, 1)-1, 0, s.cols-1)
	case 'H', 'f':
		s.moveCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'J':
		s.clearScreen(p.param(0, 0))
	case 'K':
		s.clearLine(p.param(0, 0))
	case 'L':
		s.insertLines(p.param(0, 1))
	case 'M':
		s.deleteLines(p.param(0, 1))
	case 'P':
		s.deleteChars(p.param(0, 1))
	case 'S':
		s.scrollUp(p.param(0, 1))
	case 'T':
		s.scrollDown(p.param(0, 1))
	case 'X':
		s.eraseChars(p.param(0, 1))
	case '@':
		s.insertChars(p.param(0, 1))
	case 'd':
		s.cursorY = clamp(p.param(0, 1)-1, 0, s.rows-1)
	case 'h', 'l':
		if private {
			p.handlePrivateMode(final == 'h')
		}
	case 'm':
		p.handleSGR()
	case 'r':
		s.setScrollRegion(p.param(0, 1)-1, p.param(1, s.rows)-1)
	case 's':
		s.saveCursor()
	case 'u':
		s.restoreCursor()
	case 'n':
		if !private && p.param(0, 0) == 6 {
			s.reportCursor()
		}
	default:
		s.logger.Debug("unhandled CSI", "seq", string(p.inter)+formatParams(p.params)+string(final))
	}
}

func (p *parser) handlePrivateMode(set bool) {
	s := p.s
	for _, mode := range p.params {
		switch mode {
		case 5:
			s.reverse = set
		case 6:
			s.originMode = set
			s.moveCursor(0, 0)
		case 7:
			s.autoWrap = set
		case 25:
			s.cursorHidden = !set
		case 9:
			s.setMouseMode(mouse.ModeX10, set)
		case 1000:
			s.setMouseMode(mouse.ModeNormal, set)
		case 1002:
			s.setMouseMode(mouse.ModeNormalButtonMove, set)
		case 1003:
			s.setMouseMode(mouse.ModeAnyMove, set)
		case 1005:
			s.setMouseExt(mouse.ExtUTF8, set)
		case 1006:
			s.setMouseExt(mouse.ExtSGR, set)
		case 1015:
			s.setMouseExt(mouse.ExtURXVT, set)
		}
	}
}

func (s *Screen) setMouseMode(m mouse.Mode, set bool) {
	switch {
	case set:
		s.mouse.Mode = m
	case s.mouse.Mode == m:
		s.mouse.Mode = mouse.ModeOff
	}
}

func (s *Screen) setMouseExt(e mouse.Ext, set bool) {
	switch {
	case set:
		s.mouse.Ext = e
	case s.mouse.Ext == e:
		s.mouse.Ext = mouse.ExtNone
	}
}

func (p *parser) handleSGR() {
	pen := &p.s.pen
	if len(p.params) == 0 {
		*pen = Cell{}
		return
	}

	for i := 0; i < len(p.params); i++ {
		n := p.params[i]
		switch {
		case n == 0:
			*pen = Cell{}
		case n == 1:
			pen.Attr |= AttrBold
		case n == 2:
			pen.Attr |= AttrFaint
		case n == 3:
			pen.Attr |= AttrItalic
		case n == 4 || n == 21:
			pen.Attr |= AttrUnderline
		case n == 7:
			pen.Attr |= AttrInverse
		case n == 8:
			pen.Attr |= AttrInvisible
		case n == 9:
			pen.Attr |= AttrStrike
		case n == 22:
			pen.Attr &^= AttrBold | AttrFaint
		case n == 23:
			pen.Attr &^= AttrItalic
		case n == 24:
			pen.Attr &^= AttrUnderline
		case n == 27:
			pen.Attr &^= AttrInverse
		case n == 28:
			pen.Attr &^= AttrInvisible
		case n == 29:
			pen.Attr &^= AttrStrike
		case n >= 30 && n <= 37:
			pen.Fg = ColorBlack + Color(n-30)
			pen.Attr &^= AttrFg256 | AttrFgIntense
		case n == 38:
			i = p.extendedColor(i, true)
		case n == 39:
			pen.Fg = ColorDef
			pen.Attr &^= AttrFg256 | AttrFgIntense
		case n >= 40 && n <= 47:
			pen.Bg = ColorBlack + Color(n-40)
			pen.Attr &^= AttrBg256 | AttrBgIntense
		case n == 48:
			i = p.extendedColor(i, false)
		case n == 49:
			pen.Bg = ColorDef
			pen.Attr &^= AttrBg256 | AttrBgIntense
		case n >= 90 && n <= 97:
			pen.Fg = ColorBlack + Color(n-90)
			pen.Attr = pen.Attr&^AttrFg256 | AttrFgIntense
		case n >= 100 && n <= 107:
			pen.Bg = ColorBlack + Color(n-100)
			pen.Attr = pen.Attr&^AttrBg256 | AttrBgIntense
		}
	}
}

// extendedColor applies a 38/48 sequence starting at params[i] and returns
// the index of its last parameter.
func (p *parser) extendedColor(i int, fg bool) int {
	if i+1 >= len(p.params) {
		return i
	}

	var idx int
	switch p.params[i+1] {
	case 5:
		if i+2 >= len(p.params) {
			return i + 1
		}
		idx = clamp(p.params[i+2], 0, theme.ExtendedSize-1)
		i += 2
	case 2:
		if i+4 >= len(p.params) {
			return len(p.params) - 1
		}
		idx = theme.Nearest256(
			uint8(clamp(p.params[i+2], 0, 255)),
			uint8(clamp(p.params[i+3], 0, 255)),
			uint8(clamp(p.params[i+4], 0, 255)),
		)
		i += 4
	default:
		return i + 1
	}

	pen := &p.s.pen
	if fg {
		pen.Fg = Color(idx)
		pen.Attr = pen.Attr&^AttrFgIntense | AttrFg256
	} else {
		pen.Bg = Color(idx)
		pen.Attr = pen.Attr&^AttrBgIntense | AttrBg256
	}
	return i
}

func (p *parser) handleOSC() {
	num, value, _ := strings.Cut(string(p.osc), ";")
	cmd, err := strconv.Atoi(num)
	if err != nil {
		return
	}

	s := p.s
	switch cmd {
	case 0:
		s.title, s.icon = value, value
		s.emit(evTitle, value)
		s.emit(evIcon, value)
	case 1:
		s.icon = value
		s.emit(evIcon, value)
	case 2:
		s.title = value
		s.emit(evTitle, value)
	}
}

func (p *parser) param(index, def int) int {
	if index < len(p.params) && p.params[index] > 0 {
		return p.params[index]
	}
	return def
}

func formatParams(params []int) string {
	parts := make([]string, len(params))
	for i, n := range params {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ";")
}

func cursorReport(row, col int) string {
	return "\x1b[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "R"
}
