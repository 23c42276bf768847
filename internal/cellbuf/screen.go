package cellbuf

import (
	"io"
	"log/slog"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/mouse"
)

// DefaultScrollback is the scrollback depth when none is configured.
const DefaultScrollback = 2000

// Handlers receive buffer notifications. Nil handlers are skipped.
type Handlers struct {
	// Change fires after output changed the buffer.
	Change func()
	// Scroll fires once per line scrolled off the top of the screen.
	Scroll func()
	Title  func(title string)
	Icon   func(icon string)
	Bell   func()
	Exited func()
	// CancelSelection fires when output invalidates any user selection.
	CancelSelection func()
	// Command fires for each terminal command envelope (ESC } ... NUL).
	Command func(cmd string)
}

type eventKind uint8

const (
	evChange eventKind = iota
	evScroll
	evTitle
	evIcon
	evBell
	evExited
	evCancelSel
	evCommand
)

type event struct {
	kind eventKind
	text string
}

// expectation places printed replacement characters into a block.
type expectation struct {
	b *block.Block
	n int
}

// place binds c to the next cell of the block and reports whether the
// block is now complete.
func (e *expectation) place(c *Cell) bool {
	c.Block = e.b.ID
	c.BX = e.n % e.b.W
	c.BY = e.n / e.b.W
	e.n++
	return e.n >= e.b.W*e.b.H
}

// Option configures a Screen.
type Option func(*Screen)

// WithScrollback sets the scrollback depth in lines.
func WithScrollback(n int) Option {
	return func(s *Screen) {
		if n >= 0 {
			s.maxBack = n
		}
	}
}

// WithSink sets where bytes for the running program go.
func WithSink(w io.Writer) Option {
	return func(s *Screen) {
		s.sink = w
	}
}

// WithLogger sets the screen's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Screen) {
		if l != nil {
			s.logger = l
		}
	}
}

// Screen is the reference cell buffer.
type Screen struct {
	mu sync.RWMutex

	cols  int
	rows  int
	lines [][]Cell
	back  [][]Cell

	maxBack int

	// cursorX == cols means a wrap is pending.
	cursorX      int
	cursorY      int
	cursorHidden bool

	scrollTop    int
	scrollBottom int

	pen      Cell
	savedX   int
	savedY   int
	savedPen Cell

	originMode bool
	autoWrap   bool
	reverse    bool

	// last cell before a carriage return, marked on the following LF.
	hadCR bool
	crX   int
	crY   int

	mouse mouse.State
	title string
	icon  string

	blocks  *block.Registry
	blockOn bool
	expect  map[rune]*expectation

	parser  *parser
	pending []event

	hmu      sync.Mutex
	handlers Handlers

	sinkMu sync.Mutex
	sink   io.Writer

	logger *slog.Logger
}

// NewScreen creates a screen buffer with the given dimensions.
func NewScreen(cols, rows int, opts ...Option) *Screen {
	if cols < 1 {
		cols = 80
	}
	if rows < 1 {
		rows = 24
	}

	s := &Screen{
		cols:         cols,
		rows:         rows,
		lines:        make([][]Cell, rows),
		maxBack:      DefaultScrollback,
		scrollBottom: rows - 1,
		autoWrap:     true,
		blocks:       block.NewRegistry(),
		expect:       make(map[rune]*expectation),
		logger:       slog.Default(),
	}
	for i := range s.lines {
		s.lines[i] = make([]Cell, cols)
	}
	s.parser = newParser(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// view exposes the locked screen as Rows.
type view struct {
	s *Screen
}

func (v view) Row(y int) []Cell {
	s := v.s
	if y >= 0 {
		if y >= len(s.lines) {
			return nil
		}
		return s.lines[y]
	}
	i := len(s.back) + y
	if i < 0 {
		return nil
	}
	return s.back[i]
}

func (v view) Size() (int, int) {
	return v.s.cols, v.s.rows
}

func (v view) Backscroll() int {
	return len(v.s.back)
}

// Read calls fn with the buffer frozen. fn must not retain the rows or
// call back into the screen.
func (s *Screen) Read(fn func(Rows)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(view{s: s})
}

// Size returns the screen size in cells.
func (s *Screen) Size() (cols, rows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols, s.rows
}

// Backscroll returns the number of scrollback lines.
func (s *Screen) Backscroll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.back)
}

// Cursor returns the cursor cell.
func (s *Screen) Cursor() (x, y int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	x = s.cursorX
	if x >= s.cols {
		x = s.cols - 1
	}
	return x, s.cursorY
}

// CursorHidden reports whether the program hid the cursor.
func (s *Screen) CursorHidden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorHidden
}

// Reverse reports whether reverse video is on.
func (s *Screen) Reverse() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reverse
}

// MouseState returns the negotiated mouse reporting state.
func (s *Screen) MouseState() mouse.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mouse
}

// Title returns the window title set by the program.
func (s *Screen) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// Icon returns the icon name set by the program.
func (s *Screen) Icon() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.icon
}

// Blocks returns the block registry.
func (s *Screen) Blocks() *block.Registry {
	return s.blocks
}

// ExpectBlock makes repch, printed while block mode is on, fill the
// cells of b row by row.
func (s *Screen) ExpectBlock(repch rune, b *block.Block) {
	if b == nil || b.W < 1 || b.H < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expect[repch] = &expectation{b: b}
}

// SetBlockMode turns block replacement on or off.
func (s *Screen) SetBlockMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockOn = on
}

// BlockMode reports whether block replacement is on.
func (s *Screen) BlockMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockOn
}

// SetHandlers replaces the notification handlers.
func (s *Screen) SetHandlers(h Handlers) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.handlers = h
}

// SetSink replaces where bytes for the running program go.
func (s *Screen) SetSink(w io.Writer) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.sink = w
}

// Write sends p to the running program. It never takes the buffer lock.
func (s *Screen) Write(p []byte) (int, error) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	if s.sink == nil {
		return len(p), nil
	}
	return s.sink.Write(p)
}

// Feed parses program output into the buffer.
func (s *Screen) Feed(data []byte) {
	for len(data) > 0 {
		s.mu.Lock()
		n := s.parser.parse(data)
		events := s.takeEvents(true)
		s.mu.Unlock()

		s.dispatch(events)
		data = data[n:]
	}
}

// Exit reports that the program ended.
func (s *Screen) Exit() {
	s.dispatch([]event{{kind: evExited}})
}

// Resize changes the screen size. Lines pushed off the top when shrinking
// below the cursor go to the scrollback.
func (s *Screen) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	s.mu.Lock()
	for len(s.lines) > rows && s.cursorY >= rows {
		s.pushBack(s.lines[0])
		s.lines = s.lines[1:]
		s.cursorY--
	}
	if len(s.lines) > rows {
		s.lines = s.lines[:rows]
	}
	for len(s.lines) < rows {
		s.lines = append(s.lines, make([]Cell, cols))
	}
	for y, line := range s.lines {
		if len(line) != cols {
			nl := make([]Cell, cols)
			copy(nl, line)
			s.lines[y] = nl
		}
	}

	s.cols = cols
	s.rows = rows
	s.scrollTop = 0
	s.scrollBottom = rows - 1
	s.cursorX = clamp(s.cursorX, 0, cols-1)
	s.cursorY = clamp(s.cursorY, 0, rows-1)
	s.savedX = clamp(s.savedX, 0, cols-1)
	s.savedY = clamp(s.savedY, 0, rows-1)
	s.hadCR = false
	s.pending = append(s.pending, event{kind: evChange})
	events := s.takeEvents(false)
	s.mu.Unlock()

	s.dispatch(events)
}

// takeEvents returns queued events, adding a change event when addChange
// is set and anything was parsed.
func (s *Screen) takeEvents(addChange bool) []event {
	events := s.pending
	s.pending = nil
	if addChange && s.parser.touched {
		s.parser.touched = false
		events = append(events, event{kind: evChange})
	}
	return events
}

func (s *Screen) emit(kind eventKind, text string) {
	s.pending = append(s.pending, event{kind: kind, text: text})
}

func (s *Screen) dispatch(events []event) {
	if len(events) == 0 {
		return
	}
	s.hmu.Lock()
	h := s.handlers
	s.hmu.Unlock()

	for _, ev := range events {
		switch ev.kind {
		case evChange:
			call(h.Change)
		case evScroll:
			call(h.Scroll)
		case evTitle:
			if h.Title != nil {
				h.Title(ev.text)
			}
		case evIcon:
			if h.Icon != nil {
				h.Icon(ev.text)
			}
		case evBell:
			call(h.Bell)
		case evExited:
			call(h.Exited)
		case evCancelSel:
			call(h.CancelSelection)
		case evCommand:
			if h.Command != nil {
				h.Command(ev.text)
			}
		}
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// The methods below run with s.mu held.

func (s *Screen) putRune(r rune) {
	exp := s.expect[r]
	width := 1
	if exp == nil || !s.blockOn {
		exp = nil
		width = runewidth.RuneWidth(r)
		if width == 0 {
			return
		}
	}

	if s.cursorX >= s.cols || (width == 2 && s.cursorX == s.cols-1 && s.cols > 1) {
		if s.autoWrap {
			s.lines[s.cursorY][s.cols-1].Attr |= AttrAutowrapped
			s.cursorX = 0
			s.lineFeed()
		} else {
			s.cursorX = s.cols - width
		}
	}

	line := s.lines[s.cursorY]
	c := Cell{Rune: r, Fg: s.pen.Fg, Bg: s.pen.Bg, Attr: s.pen.Attr}
	if exp != nil && exp.place(&c) {
		delete(s.expect, r)
	}
	if width == 2 {
		c.Attr |= AttrDoubleWidth
	}
	line[s.cursorX] = c
	s.cursorX++
	if width == 2 && s.cursorX < s.cols {
		trail := c
		trail.Rune = 0
		line[s.cursorX] = trail
		s.cursorX++
	}
	s.hadCR = false
}

func (s *Screen) carriageReturn() {
	if s.cursorX > 0 {
		s.hadCR = true
		s.crX = min(s.cursorX, s.cols) - 1
		s.crY = s.cursorY
	}
	s.cursorX = 0
}

// newline marks the end of the current logical line and moves down.
func (s *Screen) newline() {
	x, y := min(s.cursorX, s.cols)-1, s.cursorY
	if s.hadCR {
		x, y = s.crX, s.crY
	}
	if x >= 0 && y >= 0 && y < len(s.lines) && x < len(s.lines[y]) {
		s.lines[y][x].Attr |= AttrNewline
	}
	s.hadCR = false
	s.lineFeed()
}

func (s *Screen) lineFeed() {
	if s.cursorX >= s.cols {
		s.cursorX = s.cols - 1
	}
	if s.cursorY == s.scrollBottom {
		s.scrollUp(1)
	} else if s.cursorY < s.rows-1 {
		s.cursorY++
	}
}

func (s *Screen) reverseLineFeed() {
	if s.cursorY == s.scrollTop {
		s.scrollDown(1)
	} else if s.cursorY > 0 {
		s.cursorY--
	}
}

func (s *Screen) tab() {
	if s.cursorX >= s.cols {
		return
	}
	x := s.cursorX
	s.lines[s.cursorY][x] = Cell{Fg: s.pen.Fg, Bg: s.pen.Bg, Attr: AttrTab}
	next := (x/8 + 1) * 8
	if next >= s.cols {
		next = s.cols - 1
	}
	s.cursorX = next
}

func (s *Screen) pushBack(line []Cell) {
	if s.maxBack == 0 {
		return
	}
	s.back = append(s.back, line)
	if over := len(s.back) - s.maxBack; over > 0 {
		s.back = append(s.back[:0:0], s.back[over:]...)
	}
}

func (s *Screen) scrollUp(n int) {
	s.shiftUp(s.scrollTop, n, s.scrollTop == 0)
}

// shiftUp moves the lines from top to the scroll bottom up by n. When
// toBack is set the departing lines go to the scrollback.
func (s *Screen) shiftUp(top, n int, toBack bool) {
	bottom := s.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for i := 0; i < n; i++ {
		if toBack {
			s.pushBack(s.lines[top])
			s.emit(evScroll, "")
		}
		copy(s.lines[top:bottom], s.lines[top+1:bottom+1])
		s.lines[bottom] = make([]Cell, s.cols)
	}
	if s.hadCR && toBack {
		s.crY -= n
		s.hadCR = s.crY >= 0
	}
}

func (s *Screen) scrollDown(n int) {
	top, bottom := s.scrollTop, s.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for i := 0; i < n; i++ {
		copy(s.lines[top+1:bottom+1], s.lines[top:bottom])
		s.lines[top] = make([]Cell, s.cols)
	}
}

func (s *Screen) moveCursor(x, y int) {
	top, bottom := 0, s.rows-1
	if s.originMode {
		top, bottom = s.scrollTop, s.scrollBottom
		y += top
	}
	s.cursorX = clamp(x, 0, s.cols-1)
	s.cursorY = clamp(y, top, bottom)
	s.hadCR = false
}

func (s *Screen) moveCursorRelative(dx, dy int) {
	x := min(s.cursorX, s.cols-1)
	y := s.cursorY
	if s.originMode {
		y -= s.scrollTop
	}
	s.moveCursor(x+dx, y+dy)
}

func (s *Screen) clearRange(y, from, to int) {
	if y < 0 || y >= len(s.lines) {
		return
	}
	line := s.lines[y]
	from = clamp(from, 0, len(line))
	to = clamp(to, 0, len(line))
	for x := from; x < to; x++ {
		line[x] = Cell{Bg: s.pen.Bg}
	}
}

func (s *Screen) clearScreen(mode int) {
	x := min(s.cursorX, s.cols-1)
	switch mode {
	case 0:
		s.clearRange(s.cursorY, x, s.cols)
		for y := s.cursorY + 1; y < s.rows; y++ {
			s.clearRange(y, 0, s.cols)
		}
	case 1:
		for y := 0; y < s.cursorY; y++ {
			s.clearRange(y, 0, s.cols)
		}
		s.clearRange(s.cursorY, 0, x+1)
	case 2, 3:
		for y := 0; y < s.rows; y++ {
			s.clearRange(y, 0, s.cols)
		}
		if mode == 3 {
			s.back = nil
		}
		s.emit(evCancelSel, "")
	}
}

func (s *Screen) clearLine(mode int) {
	x := min(s.cursorX, s.cols-1)
	switch mode {
	case 0:
		s.clearRange(s.cursorY, x, s.cols)
	case 1:
		s.clearRange(s.cursorY, 0, x+1)
	case 2:
		s.clearRange(s.cursorY, 0, s.cols)
	}
}

func (s *Screen) insertLines(n int) {
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBottom {
		return
	}
	oldTop := s.scrollTop
	s.scrollTop = s.cursorY
	s.scrollDown(n)
	s.scrollTop = oldTop
}

// Lines deleted inside the screen never reach the scrollback.
func (s *Screen) deleteLines(n int) {
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBottom {
		return
	}
	s.shiftUp(s.cursorY, n, false)
}

func (s *Screen) insertChars(n int) {
	x := s.cursorX
	if n <= 0 || x >= s.cols {
		return
	}
	n = min(n, s.cols-x)
	line := s.lines[s.cursorY]
	copy(line[x+n:], line[x:s.cols-n])
	s.clearRange(s.cursorY, x, x+n)
}

func (s *Screen) deleteChars(n int) {
	x := s.cursorX
	if n <= 0 || x >= s.cols {
		return
	}
	n = min(n, s.cols-x)
	line := s.lines[s.cursorY]
	copy(line[x:], line[x+n:])
	s.clearRange(s.cursorY, s.cols-n, s.cols)
}

func (s *Screen) eraseChars(n int) {
	x := min(s.cursorX, s.cols-1)
	s.clearRange(s.cursorY, x, x+max(n, 1))
}

func (s *Screen) setScrollRegion(top, bottom int) {
	top = max(top, 0)
	bottom = min(bottom, s.rows-1)
	if top >= bottom {
		return
	}
	s.scrollTop = top
	s.scrollBottom = bottom
	s.moveCursor(0, 0)
}

func (s *Screen) saveCursor() {
	s.savedX = min(s.cursorX, s.cols-1)
	s.savedY = s.cursorY
	s.savedPen = s.pen
}

func (s *Screen) restoreCursor() {
	s.cursorX = s.savedX
	s.cursorY = s.savedY
	s.pen = s.savedPen
}

func (s *Screen) reset() {
	for y := range s.lines {
		s.lines[y] = make([]Cell, s.cols)
	}
	s.cursorX, s.cursorY = 0, 0
	s.cursorHidden = false
	s.scrollTop, s.scrollBottom = 0, s.rows-1
	s.pen = Cell{}
	s.originMode = false
	s.autoWrap = true
	s.reverse = false
	s.mouse = mouse.State{}
	s.blockOn = false
	s.hadCR = false
	s.emit(evCancelSel, "")
}

func (s *Screen) reportCursor() {
	_, _ = s.Write([]byte(cursorReport(s.cursorY+1, min(s.cursorX, s.cols-1)+1)))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
