package termio

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/selection"
	"github.com/dshills/termcore/internal/timer"
)

type fakeClipboard struct {
	mu   sync.Mutex
	data map[selection.Kind]string
	err  error
}

func newFakeClipboard() *fakeClipboard {
	return &fakeClipboard{data: make(map[selection.Kind]string)}
}

func (c *fakeClipboard) Get(kind selection.Kind) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[kind], c.err
}

func (c *fakeClipboard) Set(kind selection.Kind, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[kind] = text
	return nil
}

type fakeLauncher struct {
	calls [][]string
}

func (l *fakeLauncher) Launch(name string, args ...string) error {
	l.calls = append(l.calls, append([]string{name}, args...))
	return nil
}

type otherOwner struct {
	lost []selection.Kind
}

func (o *otherOwner) SelectionLost(kind selection.Kind)         { o.lost = append(o.lost, kind) }
func (o *otherOwner) ReassertSelection(selection.Kind, string) {}

type harness struct {
	t      *testing.T
	scr    *cellbuf.Screen
	sink   bytes.Buffer
	sched  *timer.Manual
	clip   *fakeClipboard
	launch *fakeLauncher
	now    time.Time
	w      *Widget
	frames []Frame
	notes  []Notification
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		sched:  timer.NewManual(),
		clip:   newFakeClipboard(),
		launch: &fakeLauncher{},
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.scr = cellbuf.NewScreen(20, 5, cellbuf.WithSink(&h.sink), cellbuf.WithScrollback(100))
	base := []Option{
		WithScheduler(h.sched),
		WithClock(func() time.Time { return h.now }),
		WithClipboard(h.clip),
		WithLauncher(h.launch),
		OnFrame(func(f Frame) { h.frames = append(h.frames, f) }),
		OnNotify(func(n Notification) { h.notes = append(h.notes, n) }),
	}
	h.w = New(h.scr, append(base, opts...)...)
	t.Cleanup(h.w.Close)
	return h
}

func (h *harness) feed(s string) {
	h.scr.Feed([]byte(s))
}

func (h *harness) tick() {
	h.sched.Advance(RenderInterval)
}

// sent returns and forgets what was written to the program.
func (h *harness) sent() string {
	s := h.sink.String()
	h.sink.Reset()
	return s
}

func (h *harness) lastFrame() Frame {
	h.t.Helper()
	require.NotEmpty(h.t, h.frames, "no frame delivered")
	return h.frames[len(h.frames)-1]
}

func (h *harness) names() []string {
	var out []string
	for _, n := range h.notes {
		out = append(out, n.Name)
	}
	return out
}

func (h *harness) mouse(kind mouse.Kind, b mouse.Button, x, y int, mods mouse.Modifier) {
	h.w.Mouse(MouseEvent{Kind: kind, Button: b, X: x, Y: y, Mods: mods})
}

func (h *harness) click(x, y int) {
	h.mouse(mouse.KindDown, mouse.ButtonLeft, x, y, 0)
	h.mouse(mouse.KindUp, mouse.ButtonLeft, x, y, 0)
	h.now = h.now.Add(100 * time.Millisecond)
}

func (h *harness) lines(n int) {
	for i := 0; i < n; i++ {
		h.feed("line\r\n")
	}
}

func TestRenderOnChange(t *testing.T) {
	h := newHarness(t)

	h.feed("hello")
	assert.Empty(t, h.frames, "frame before the render tick")

	h.tick()
	f := h.lastFrame()
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, 20, f.Cols)
	assert.Equal(t, 5, f.Rows)
	assert.Equal(t, 'h', f.Cells[0][0].Rune)
	assert.Equal(t, 'o', f.Cells[0][4].Rune)
	assert.NotEmpty(t, f.Spans)
	assert.Contains(t, h.names(), NotifyChanged)
}

func TestRenderCoalesces(t *testing.T) {
	h := newHarness(t)

	h.feed("a")
	h.feed("b")
	h.feed("c")
	h.tick()
	assert.Len(t, h.frames, 1)

	h.tick()
	assert.Len(t, h.frames, 1, "no change, no frame")
}

func TestFrameCellsAreCopies(t *testing.T) {
	h := newHarness(t)

	h.feed("x")
	h.tick()
	first := h.lastFrame()

	h.feed("\ry")
	h.tick()
	assert.Equal(t, 'x', first.Cells[0][0].Rune)
	assert.Equal(t, 'y', h.lastFrame().Cells[0][0].Rune)
}

func TestWheelScrollsBack(t *testing.T) {
	h := newHarness(t)
	h.lines(12)
	require.GreaterOrEqual(t, h.scr.Backscroll(), 8)

	h.mouse(mouse.KindWheelUp, mouse.ButtonNone, 0, 0, 0)
	assert.Equal(t, WheelStep, h.w.Scroll())
	h.mouse(mouse.KindWheelUp, mouse.ButtonNone, 0, 0, 0)
	assert.Equal(t, 2*WheelStep, h.w.Scroll())

	h.mouse(mouse.KindWheelUp, mouse.ButtonNone, 0, 0, mouse.ModCtrl)
	assert.Equal(t, 2*WheelStep, h.w.Scroll(), "modified wheel is ignored")

	h.mouse(mouse.KindWheelDown, mouse.ButtonNone, 0, 0, 0)
	assert.Equal(t, WheelStep, h.w.Scroll())

	h.tick()
	assert.Equal(t, WheelStep, h.lastFrame().Scroll)

	h.feed("more")
	assert.Equal(t, 0, h.w.Scroll(), "output jumps to the bottom")
	assert.Empty(t, h.sent())
}

func TestScrollClamped(t *testing.T) {
	h := newHarness(t)
	h.lines(6)
	back := h.scr.Backscroll()

	h.w.SetScroll(1000)
	assert.Equal(t, back, h.w.Scroll())
	h.w.SetScroll(-3)
	assert.Equal(t, 0, h.w.Scroll())
}

func TestWheelReportedInMouseMode(t *testing.T) {
	h := newHarness(t)
	h.lines(12)
	h.feed("\x1b[?1000h\x1b[?1006h")
	h.sent()

	h.mouse(mouse.KindWheelUp, mouse.ButtonNone, 0, 0, 0)
	assert.Equal(t, "\x1b[<65;1;1M", h.sent())
	h.mouse(mouse.KindWheelDown, mouse.ButtonNone, 0, 0, 0)
	assert.Equal(t, "\x1b[<66;1;1M", h.sent())
	assert.Equal(t, 0, h.w.Scroll())
}

func TestMouseReporting(t *testing.T) {
	h := newHarness(t)
	h.feed("\x1b[?1000h\x1b[?1006h")

	h.mouse(mouse.KindDown, mouse.ButtonLeft, 2, 1, 0)
	assert.Equal(t, "\x1b[<0;3;2M", h.sent())
	h.mouse(mouse.KindUp, mouse.ButtonLeft, 2, 1, 0)
	assert.Equal(t, "\x1b[<3;3;2m", h.sent())
	h.mouse(mouse.KindDown, mouse.ButtonRight, 2, 1, 0)
	assert.Equal(t, "\x1b[<2;3;2M", h.sent())
	h.mouse(mouse.KindUp, mouse.ButtonRight, 2, 1, 0)
	assert.Equal(t, "\x1b[<3;3;2m", h.sent())

	assert.Empty(t, h.w.SelectionText(), "reported presses do not select")
}

func TestMouseClampedToGrid(t *testing.T) {
	h := newHarness(t)
	h.feed("\x1b[?1000h\x1b[?1006h")

	h.mouse(mouse.KindDown, mouse.ButtonLeft, 500, -4, 0)
	assert.Equal(t, "\x1b[<0;20;1M", h.sent())
}

func TestDragSelectionTakesPrimary(t *testing.T) {
	reg := selection.NewRegistry()
	h := newHarness(t, WithSelectionRegistry(reg))
	h.feed("hello world")

	h.mouse(mouse.KindDown, mouse.ButtonLeft, 0, 0, 0)
	h.mouse(mouse.KindMove, mouse.ButtonLeft, 2, 0, 0)
	h.mouse(mouse.KindMove, mouse.ButtonLeft, 4, 0, 0)
	h.mouse(mouse.KindUp, mouse.ButtonLeft, 4, 0, 0)

	assert.Equal(t, "hello", h.w.SelectionText())
	got, _ := h.clip.Get(selection.Primary)
	assert.Equal(t, "hello", got)

	holder, ok := reg.Holder(selection.Primary)
	require.True(t, ok)
	assert.Same(t, h.w, holder)

	h.tick()
	ov := h.lastFrame().Overlay
	assert.True(t, ov.Selection)
	assert.Equal(t, 4, ov.End.X)
}

func TestClickWithoutDragSelectsNothing(t *testing.T) {
	h := newHarness(t)
	h.feed("hello")

	h.click(1, 0)
	assert.Empty(t, h.w.SelectionText())
	got, _ := h.clip.Get(selection.Primary)
	assert.Empty(t, got)
}

func TestDoubleAndTripleClick(t *testing.T) {
	h := newHarness(t)
	h.feed("hello world")

	h.click(7, 0)
	h.click(7, 0)
	assert.Equal(t, "world", h.w.SelectionText())

	h.click(7, 0)
	assert.True(t, strings.HasPrefix(h.w.SelectionText(), "hello world"))
	got, _ := h.clip.Get(selection.Primary)
	assert.True(t, strings.HasPrefix(got, "hello world"))
}

func TestSlowClicksAreSingle(t *testing.T) {
	h := newHarness(t)
	h.feed("hello world")

	h.click(7, 0)
	h.now = h.now.Add(time.Second)
	h.click(7, 0)
	assert.Empty(t, h.w.SelectionText())
}

func TestSelectionLostToAnotherOwner(t *testing.T) {
	reg := selection.NewRegistry()
	h := newHarness(t, WithSelectionRegistry(reg))
	h.feed("hello world")
	h.click(0, 0)
	h.click(0, 0)
	require.Equal(t, "hello", h.w.SelectionText())

	other := &otherOwner{}
	reg.Register(other)
	reg.Take(other, selection.Primary, "theirs")
	h.sched.Drain()

	assert.Empty(t, h.w.SelectionText())
}

func TestCopyAndPaste(t *testing.T) {
	h := newHarness(t)
	h.feed("hello world")
	h.click(7, 0)
	h.click(7, 0)

	require.NoError(t, h.w.Copy(selection.Clipboard))
	got, _ := h.clip.Get(selection.Clipboard)
	assert.Equal(t, "world", got)
	h.sent()

	h.clip.Set(selection.Clipboard, "one\ntwo\n")
	require.NoError(t, h.w.Paste(selection.Clipboard))
	assert.Equal(t, "one\rtwo\r", h.sent())
}

func TestMiddleClickPastesPrimary(t *testing.T) {
	h := newHarness(t)
	h.clip.Set(selection.Primary, "ls\n")

	h.mouse(mouse.KindDown, mouse.ButtonMiddle, 0, 0, 0)
	assert.Equal(t, "ls\r", h.sent())
}

func TestCopyErrors(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.w.Copy(selection.Clipboard), ErrEmptySelection)

	n := newHarness(t, WithClipboard(nil))
	assert.ErrorIs(t, n.w.Paste(selection.Clipboard), ErrNoClipboard)

	h.clip.err = errors.New("no display")
	assert.Error(t, h.w.Paste(selection.Primary))
	assert.Empty(t, h.sent())
}

func TestRightClickOptions(t *testing.T) {
	h := newHarness(t)

	h.mouse(mouse.KindDown, mouse.ButtonRight, 0, 0, 0)
	assert.Equal(t, []string{NotifyOptions}, h.names())

	h.mouse(mouse.KindDown, mouse.ButtonRight, 0, 0, mouse.ModShift)
	assert.True(t, h.w.Debug())
	h.tick()
	assert.True(t, h.lastFrame().Debug)
}

func TestKeyNotifications(t *testing.T) {
	ctrl := mouse.ModCtrl
	cs := mouse.ModCtrl | mouse.ModShift
	tests := []struct {
		name string
		ev   KeyEvent
		want string
	}{
		{"prev", KeyEvent{Key: KeyPgUp, Mods: ctrl}, NotifyPrev},
		{"next", KeyEvent{Key: KeyPgDn, Mods: ctrl}, NotifyNext},
		{"tab", KeyEvent{Key: KeyRune, Rune: '3', Mods: ctrl}, "tab,3"},
		{"split h", KeyEvent{Key: KeyPgUp, Mods: cs}, NotifySplitH},
		{"split v", KeyEvent{Key: KeyPgDn, Mods: cs}, NotifySplitV},
		{"new", KeyEvent{Key: KeyRune, Rune: 't', Mods: cs}, NotifyNew},
		{"select", KeyEvent{Key: KeyHome, Mods: cs}, NotifySelect},
		{"miniview", KeyEvent{Key: KeyRune, Rune: 'f', Mods: cs}, NotifyMiniviewToggle},
		{"cmdbox", KeyEvent{Key: KeyHome, Mods: mouse.ModAlt}, NotifyCmdbox},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.ev.Text = "\x1bX"
			h.w.Key(tt.ev)
			assert.Equal(t, []string{tt.want}, h.names())
			assert.Empty(t, h.sent(), "consumed keys reach no program")
		})
	}
}

func TestKeyText(t *testing.T) {
	h := newHarness(t)
	h.lines(12)
	h.w.SetScroll(3)

	h.w.Key(KeyEvent{Key: KeyModifier, Mods: mouse.ModShift})
	assert.Equal(t, 3, h.w.Scroll(), "modifier keys keep the scroll")

	h.w.Key(KeyEvent{Key: KeyRune, Rune: 'a', Text: "a"})
	assert.Equal(t, "a", h.sent())
	assert.Equal(t, 0, h.w.Scroll())

	h.w.Key(KeyEvent{Key: KeyRune, Rune: 'c', Mods: mouse.ModCtrl, Text: "\x03"})
	assert.Equal(t, "\x03", h.sent(), "unbound control keys pass through")
}

func TestShiftPageScrolls(t *testing.T) {
	h := newHarness(t)
	h.lines(20)

	h.w.Key(KeyEvent{Key: KeyPgUp, Mods: mouse.ModShift})
	assert.Equal(t, 3, h.w.Scroll())
	h.w.Key(KeyEvent{Key: KeyPgUp, Mods: mouse.ModShift})
	assert.Equal(t, 6, h.w.Scroll())
	h.w.Key(KeyEvent{Key: KeyPgDn, Mods: mouse.ModShift})
	assert.Equal(t, 3, h.w.Scroll())
}

func TestInsertPastes(t *testing.T) {
	h := newHarness(t)
	h.clip.Set(selection.Clipboard, "clip")
	h.clip.Set(selection.Primary, "prim")

	h.w.Key(KeyEvent{Key: KeyInsert, Mods: mouse.ModShift})
	assert.Equal(t, "clip", h.sent())
	h.w.Key(KeyEvent{Key: KeyInsert, Mods: mouse.ModShift | mouse.ModCtrl})
	assert.Equal(t, "prim", h.sent())
	h.w.Key(KeyEvent{Key: KeyEnter, Mods: mouse.ModAlt})
	assert.Equal(t, "prim", h.sent())
	h.w.Key(KeyEvent{Key: KeyRune, Rune: 'v', Mods: mouse.ModShift | mouse.ModCtrl})
	assert.Equal(t, "clip", h.sent())
}

func TestCtrlShiftCopy(t *testing.T) {
	h := newHarness(t)
	h.feed("hello world")
	h.click(1, 0)
	h.click(1, 0)

	h.w.Key(KeyEvent{Key: KeyRune, Rune: 'c', Mods: mouse.ModShift | mouse.ModCtrl})
	got, _ := h.clip.Get(selection.Clipboard)
	assert.Equal(t, "hello", got)
}

func hoverLink(t *testing.T, h *harness, x, y int) {
	t.Helper()
	// A composed frame re-arms the hover probe, so settle rendering first.
	h.tick()
	h.mouse(mouse.KindMove, mouse.ButtonNone, x, y, 0)
	h.sched.Advance(HoverDelay)
	_, ok := h.w.HoveredLink()
	require.True(t, ok, "no link under the pointer")
}

func TestLinkHoverAndActivation(t *testing.T) {
	h := newHarness(t)
	h.feed("see https://example.com/x now")

	hoverLink(t, h, 6, 0)
	l, _ := h.w.HoveredLink()
	assert.Equal(t, "https://example.com/x", l.Text)

	h.tick()
	f := h.lastFrame()
	assert.True(t, f.HasLink)
	assert.Equal(t, 4, f.Link.X1)

	h.mouse(mouse.KindDown, mouse.ButtonLeft, 6, 0, 0)
	h.mouse(mouse.KindUp, mouse.ButtonLeft, 6, 0, 0)
	assert.Empty(t, h.launch.calls, "activation waits for the link delay")

	h.sched.Advance(LinkDelay)
	require.Len(t, h.launch.calls, 1)
	assert.Equal(t, []string{"xdg-open", "https://example.com/x"}, h.launch.calls[0])
}

func TestLinkCopiedWhenNothingSelected(t *testing.T) {
	h := newHarness(t)
	h.feed("see https://example.com/x now")
	hoverLink(t, h, 6, 0)

	require.NoError(t, h.w.Copy(selection.Clipboard))
	got, _ := h.clip.Get(selection.Clipboard)
	assert.Equal(t, "https://example.com/x", got)
}

func TestLinkDragDoesNotActivate(t *testing.T) {
	h := newHarness(t)
	h.feed("see https://example.com/x now")
	hoverLink(t, h, 6, 0)

	h.mouse(mouse.KindDown, mouse.ButtonLeft, 6, 0, 0)
	h.mouse(mouse.KindMove, mouse.ButtonLeft, 15, 0, 0)
	h.mouse(mouse.KindUp, mouse.ButtonLeft, 15, 0, 0)
	h.sched.Advance(LinkDelay)

	assert.Empty(t, h.launch.calls)
	// The drag selects nothing, so the hovered link is still what a copy
	// takes.
	assert.False(t, h.lastFrame().Overlay.Selection)
	assert.Equal(t, "https://example.com/x", h.w.SelectionText())
}

func TestLinkDoubleClickSelectsInstead(t *testing.T) {
	h := newHarness(t)
	h.feed("see https://example.com/x now")
	hoverLink(t, h, 6, 0)

	h.click(6, 0)
	h.click(6, 0)
	h.sched.Advance(LinkDelay)

	assert.Empty(t, h.launch.calls)
	assert.NotEmpty(t, h.w.SelectionText())
}

func TestUnhandledCommandNotified(t *testing.T) {
	h := newHarness(t)

	h.feed("\x1b}hello\x00")
	require.Len(t, h.notes, 1)
	assert.Equal(t, Notification{Name: NotifyCommand, Payload: "hello"}, h.notes[0])
}

func TestSizeQuery(t *testing.T) {
	h := newHarness(t)

	h.feed("\x1b}qs\x00")
	assert.Equal(t, "20;5;8;16\n", h.sent())
	assert.Empty(t, h.notes)
}

func TestBlockPlacement(t *testing.T) {
	h := newHarness(t)

	h.feed("\x1b}is#2;1;http://example.com/a.png\x00")
	h.feed("\x1b}ib\x00##\x1b}ie\x00")
	h.w.Render()

	blocks := h.lastFrame().Blocks
	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, block.KindStretch, b.Kind)
	assert.Equal(t, "http://example.com/a.png", b.Path)
	assert.Equal(t, [4]int{0, 0, 2, 1}, [4]int{b.X, b.Y, b.W, b.H})
	assert.False(t, b.Interactive)
	assert.Equal(t, blocks, h.w.Blocks())
}

func TestBlockLeavesWithScroll(t *testing.T) {
	h := newHarness(t)
	h.feed("\x1b}is#2;1;http://example.com/a.png\x00")
	h.feed("\x1b}ib\x00##\x1b}ie\x00\r\n")
	h.w.Render()
	require.Len(t, h.w.Blocks(), 1)

	h.lines(8)
	h.w.Render()
	assert.Empty(t, h.w.Blocks())

	h.w.SetScroll(h.scr.Backscroll())
	h.w.Render()
	assert.Len(t, h.w.Blocks(), 1, "scrolled back into view")
}

func TestResize(t *testing.T) {
	h := newHarness(t)

	h.w.Resize(30, 8)
	cols, rows := h.w.GridSize()
	assert.Equal(t, 30, cols)
	assert.Equal(t, 8, rows)
	f := h.lastFrame()
	assert.Equal(t, 30, f.Cols)
	assert.Equal(t, 8, f.Rows)
	assert.Contains(t, h.names(), NotifyMiniviewShow)

	n := len(h.frames)
	h.w.Resize(30, 8)
	assert.Len(t, h.frames, n, "same size is a no-op")
}

func TestRequestResizeLastWins(t *testing.T) {
	h := newHarness(t)

	h.w.RequestResize(25, 6)
	h.w.RequestResize(40, 10)
	h.sched.Advance(ResizeDelay)

	cols, rows := h.w.GridSize()
	assert.Equal(t, 40, cols)
	assert.Equal(t, 10, rows)
	c, r := h.scr.Size()
	assert.Equal(t, [2]int{40, 10}, [2]int{c, r})
}

func TestBufferNotifications(t *testing.T) {
	h := newHarness(t)

	h.feed("\a")
	h.feed("\x1b]2;build\a")
	h.feed("\x1b]1;icon\a")
	h.scr.Exit()

	assert.Contains(t, h.notes, Notification{Name: NotifyBell})
	assert.Contains(t, h.notes, Notification{Name: NotifyTitle, Payload: "build"})
	assert.Contains(t, h.notes, Notification{Name: NotifyIcon, Payload: "icon"})
	assert.Contains(t, h.notes, Notification{Name: NotifyExited})
	assert.Equal(t, "build", h.w.Title())
}

func TestCloseStopsDelivery(t *testing.T) {
	h := newHarness(t)
	h.w.Close()

	h.feed("after close")
	h.tick()
	h.w.Render()
	assert.Empty(t, h.frames)
	assert.Empty(t, h.notes)
}
