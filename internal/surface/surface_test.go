package surface

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/compositor"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/link"
	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/selection"
	"github.com/dshills/termcore/internal/termio"
	"github.com/dshills/termcore/internal/theme"
	"github.com/dshills/termcore/internal/timer"
)

func newSim(t *testing.T, cols, rows int) (tcell.SimulationScreen, *Surface) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	s := New(sim)
	require.NoError(t, s.Init())
	sim.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return sim, s
}

func row(text string, cols int) []compositor.Cell {
	out := make([]compositor.Cell, cols)
	for i, r := range []rune(text) {
		out[i].Rune = r
	}
	return out
}

func runeAt(sim tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := sim.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return 0
	}
	return c.Runes[0]
}

func attrsAt(sim tcell.SimulationScreen, x, y int) tcell.AttrMask {
	cells, w, _ := sim.GetContents()
	_, _, attrs := cells[y*w+x].Style.Decompose()
	return attrs
}

func linkSpan(x1, y1, x2, y2 int) link.Link {
	return link.Link{Text: "x", X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestDrawPaintsCells(t *testing.T) {
	sim, s := newSim(t, 4, 2)

	s.Draw(termio.Frame{
		Cols:    4,
		Rows:    2,
		Cells:   [][]compositor.Cell{row("ab", 4), row("", 4)},
		Overlay: compositor.Overlay{CursorVisible: true, Cursor: compositor.Point{X: 2, Y: 0}},
	})

	assert.Equal(t, 'a', runeAt(sim, 0, 0))
	assert.Equal(t, 'b', runeAt(sim, 1, 0))
	assert.Equal(t, ' ', runeAt(sim, 2, 0))
	x, y, visible := sim.GetCursor()
	assert.True(t, visible)
	assert.Equal(t, [2]int{2, 0}, [2]int{x, y})
}

func TestDrawWideGlyph(t *testing.T) {
	sim, s := newSim(t, 4, 1)

	cells := row("", 4)
	cells[0] = compositor.Cell{Rune: '界', DoubleWidth: true}
	cells[1] = compositor.Cell{DoubleWidth: true}
	cells[2] = compositor.Cell{Rune: 'x'}
	s.Draw(termio.Frame{Cols: 4, Rows: 1, Cells: [][]compositor.Cell{cells}})

	assert.Equal(t, '界', runeAt(sim, 0, 0))
	assert.Equal(t, 'x', runeAt(sim, 2, 0))
}

func TestDrawSelectionAndLink(t *testing.T) {
	sim, s := newSim(t, 6, 2)

	s.Draw(termio.Frame{
		Cols:  6,
		Rows:  2,
		Cells: [][]compositor.Cell{row("abcdef", 6), row("ghijkl", 6)},
		Overlay: compositor.Overlay{
			Selection: true,
			Start:     compositor.Point{X: 1, Y: 0},
			End:       compositor.Point{X: 2, Y: 0},
		},
		HasLink: true,
		Link:    linkSpan(4, 0, 1, 1),
	})

	assert.Zero(t, attrsAt(sim, 0, 0)&tcell.AttrReverse)
	assert.NotZero(t, attrsAt(sim, 1, 0)&tcell.AttrReverse)
	assert.NotZero(t, attrsAt(sim, 2, 0)&tcell.AttrReverse)
	assert.Zero(t, attrsAt(sim, 3, 0)&tcell.AttrReverse)

	assert.Zero(t, attrsAt(sim, 3, 0)&tcell.AttrUnderline)
	assert.NotZero(t, attrsAt(sim, 5, 0)&tcell.AttrUnderline)
	assert.NotZero(t, attrsAt(sim, 0, 1)&tcell.AttrUnderline, "wrapped link row")
	assert.Zero(t, attrsAt(sim, 2, 1)&tcell.AttrUnderline)
}

func TestDrawBlockPlaceholder(t *testing.T) {
	sim, s := newSim(t, 6, 3)

	s.Draw(termio.Frame{
		Cols:   6,
		Rows:   3,
		Cells:  [][]compositor.Cell{row("", 6), row("", 6), row("", 6)},
		Blocks: []termio.Placement{{X: 1, Y: 0, W: 3, H: 2, Path: "/pics/cat.png"}},
	})

	assert.Equal(t, 'c', runeAt(sim, 1, 0))
	assert.Equal(t, 't', runeAt(sim, 3, 0))
	assert.Equal(t, ' ', runeAt(sim, 4, 0), "name is cut at the block width")
	assert.Equal(t, MediaPlaceholder, runeAt(sim, 2, 1))
	assert.Equal(t, ' ', runeAt(sim, 2, 2))
}

func TestKeyConversion(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		key  termio.Key
		mods mouse.Modifier
		text string
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), termio.KeyRune, 0, "a"},
		{"ctrl rune", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModCtrl), termio.KeyRune, mouse.ModCtrl, "\x03"},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), termio.KeyRune, mouse.ModAlt, "\x1bx"},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), termio.KeyEnter, 0, "\r"},
		{"ctrl pgup", tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModCtrl), termio.KeyPgUp, mouse.ModCtrl, "\x1b[5~"},
		{"shift insert", tcell.NewEventKey(tcell.KeyInsert, 0, tcell.ModShift), termio.KeyInsert, mouse.ModShift, "\x1b[2~"},
		{"arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), termio.KeyOther, 0, "\x1b[A"},
		{"f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), termio.KeyOther, 0, "\x1b[15~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := Key(tt.ev)
			assert.Equal(t, tt.key, k.Key)
			assert.Equal(t, tt.mods, k.Mods)
			assert.Equal(t, tt.text, k.Text)
		})
	}
}

func TestMouseConversion(t *testing.T) {
	var m mouseState

	got := m.convert(tcell.NewEventMouse(3, 1, tcell.Button1, tcell.ModNone))
	require.Len(t, got, 1)
	assert.Equal(t, termio.MouseEvent{Kind: mouse.KindDown, Button: mouse.ButtonLeft, X: 3, Y: 1}, got[0])

	got = m.convert(tcell.NewEventMouse(4, 1, tcell.Button1, tcell.ModNone))
	require.Len(t, got, 1)
	assert.Equal(t, mouse.KindMove, got[0].Kind)

	got = m.convert(tcell.NewEventMouse(4, 1, tcell.ButtonNone, tcell.ModNone))
	require.Len(t, got, 1)
	assert.Equal(t, termio.MouseEvent{Kind: mouse.KindUp, Button: mouse.ButtonLeft, X: 4, Y: 1}, got[0])

	got = m.convert(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModCtrl))
	require.Len(t, got, 1)
	assert.Equal(t, mouse.KindWheelUp, got[0].Kind)
	assert.Equal(t, mouse.ModCtrl, got[0].Mods)

	got = m.convert(tcell.NewEventMouse(0, 0, tcell.Button2, tcell.ModNone))
	require.Len(t, got, 1)
	assert.Equal(t, mouse.ButtonRight, got[0].Button)
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestRunDeliversInput(t *testing.T) {
	sim, s := newSim(t, 30, 6)
	var sink lockedBuffer
	scr := cellbuf.NewScreen(10, 3, cellbuf.WithSink(&sink))
	w := termio.New(scr, termio.WithScheduler(timer.NewManual()))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, w) }()

	assert.Eventually(t, func() bool {
		cols, rows := w.GridSize()
		return cols == 30 && rows == 6
	}, time.Second, 5*time.Millisecond)

	sim.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	assert.Eventually(t, func() bool { return sink.String() == "a" }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestKeyFilter(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	quit := false
	s := New(sim, WithKeyFilter(func(e *tcell.EventKey) bool {
		quit = QuitKey(e)
		return quit
	}))
	var sink bytes.Buffer
	w := termio.New(cellbuf.NewScreen(10, 3, cellbuf.WithSink(&sink)), termio.WithScheduler(timer.NewManual()))
	defer w.Close()

	s.dispatch(tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl), w)
	assert.True(t, quit)
	assert.Empty(t, sink.String())
}

func TestPasteIgnoresShortcuts(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	s := New(sim)
	var notes []string
	var sink bytes.Buffer
	w := termio.New(cellbuf.NewScreen(10, 3, cellbuf.WithSink(&sink)),
		termio.WithScheduler(timer.NewManual()),
		termio.OnNotify(func(n termio.Notification) { notes = append(notes, n.Name) }))
	defer w.Close()

	s.dispatch(tcell.NewEventPaste(true), w)
	s.dispatch(tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModCtrl), w)
	s.dispatch(tcell.NewEventPaste(false), w)
	s.dispatch(tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModCtrl), w)

	assert.Equal(t, []string{termio.NotifyPrev}, notes)
	assert.Equal(t, "\x1b[5~", sink.String())
}

func TestPaletteFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Theme.Foreground = "#ff0000"
	cfg.Theme.Palette = map[string]string{"3": "#00ff00"}

	p, err := Palette(cfg)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", p.Foreground().Hex())
	c, err := p.Extended(3)
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", c.Hex())

	cfg.Theme.Background = "nope"
	_, err = Palette(cfg)
	assert.ErrorIs(t, err, theme.ErrBadColor)
}

func fakeClipboard(primary bool) (*Clipboard, *[]string) {
	var writes []string
	store := ""
	c := &Clipboard{
		read:        func() (string, error) { return store, nil },
		write:       func(s string) error { writes = append(writes, s); store = s; return nil },
		unsupported: func() bool { return false },
		primary:     primary,
	}
	return c, &writes
}

func TestClipboardLocalPrimary(t *testing.T) {
	c, writes := fakeClipboard(false)

	require.NoError(t, c.Set(selection.Primary, "sel"))
	got, err := c.Get(selection.Primary)
	require.NoError(t, err)
	assert.Equal(t, "sel", got)
	assert.Empty(t, *writes, "PRIMARY stays in process")

	require.NoError(t, c.Set(selection.Clipboard, "clip"))
	got, err = c.Get(selection.Clipboard)
	require.NoError(t, err)
	assert.Equal(t, "clip", got)
	assert.Equal(t, []string{"clip"}, *writes)
}

func TestClipboardUnsupported(t *testing.T) {
	c, _ := fakeClipboard(true)
	c.unsupported = func() bool { return true }

	err := c.Set(selection.Clipboard, "x")
	assert.True(t, errors.Is(err, ErrClipboardUnsupported))
	_, err = c.Get(selection.Primary)
	assert.ErrorIs(t, err, ErrClipboardUnsupported)
}
