package compositor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/media"
)

type fakeRows struct {
	rows [][]cellbuf.Cell
}

func (f *fakeRows) Row(y int) []cellbuf.Cell {
	if y < 0 || y >= len(f.rows) {
		return nil
	}
	return f.rows[y]
}

func (f *fakeRows) Size() (int, int) { return 80, len(f.rows) }
func (f *fakeRows) Backscroll() int  { return 0 }

func (f *fakeRows) Read(fn func(cellbuf.Rows)) { fn(f) }

type activation struct{ id, x, y int }

type fakeBlocks struct {
	begins, ends int
	activated    []activation
}

func (f *fakeBlocks) BeginFrame()           { f.begins++ }
func (f *fakeBlocks) EndFrame()             { f.ends++ }
func (f *fakeBlocks) Activate(id, x, y int) { f.activated = append(f.activated, activation{id, x, y}) }

type frameStats struct {
	frames, spans, cells int
}

func (f *frameStats) FrameComposed(spans, cells int, _ time.Duration) {
	f.frames++
	f.spans += spans
	f.cells += cells
}

func TestComposeIdempotent(t *testing.T) {
	s := cellbuf.NewScreen(20, 4)
	s.Feed([]byte("\x1b[1;31mhello\x1b[0m \x1b[7mworld\x1b[0m\r\n世界\x1b[4m \x1b[0m"))

	c := New(20, 4)
	first := c.Compose(s, 4, 20, 0, false, false)
	require.NotEmpty(t, first)

	second := c.Compose(s, 4, 20, 0, false, false)
	assert.Empty(t, second)

	// Debug mode redraws everything.
	debug := c.Compose(s, 4, 20, 0, false, true)
	assert.Len(t, debug, 4)
}

func TestComposeWideGrid(t *testing.T) {
	s := cellbuf.NewScreen(80, 24)
	s.Feed([]byte("\x1b[24;75Hend"))

	c := New(80, 24)
	spans := c.Compose(s, 24, 80, 0, false, false)
	require.NotEmpty(t, spans)
	cols, rows := c.Grid().Size()
	assert.Equal(t, 80, cols)
	assert.Equal(t, 24, rows)
	assert.Equal(t, 'e', c.Grid().Cell(74, 23).Rune)
}

func TestComposeColors(t *testing.T) {
	red := cellbuf.ColorRed
	tests := []struct {
		name    string
		cell    cellbuf.Cell
		reverse bool
		want    Cell
	}{
		{"plain", cellbuf.Cell{Rune: 'a', Fg: red},
			false, Cell{Rune: 'a', Fg: red, Bg: cellbuf.ColorInvis}},
		{"bold", cellbuf.Cell{Rune: 'a', Fg: red, Attr: cellbuf.AttrBold},
			false, Cell{Rune: 'a', Fg: red + 12, Bg: cellbuf.ColorInvis}},
		{"faint", cellbuf.Cell{Rune: 'a', Fg: red, Attr: cellbuf.AttrFaint},
			false, Cell{Rune: 'a', Fg: red + 24, Bg: cellbuf.ColorInvis + 24}},
		{"intense", cellbuf.Cell{Rune: 'a', Fg: red, Attr: cellbuf.AttrFgIntense},
			false, Cell{Rune: 'a', Fg: red + 48, Bg: cellbuf.ColorInvis}},
		{"inverse", cellbuf.Cell{Rune: 'a', Fg: red, Attr: cellbuf.AttrInverse},
			false, Cell{Rune: 'a', Fg: cellbuf.ColorInverse, Bg: red}},
		{"inverse defaults", cellbuf.Cell{Rune: 'a', Attr: cellbuf.AttrInverse},
			false, Cell{Rune: 'a', Fg: cellbuf.ColorInverse, Bg: cellbuf.ColorInverseBg}},
		{"inverse bold", cellbuf.Cell{Rune: 'a', Fg: red, Attr: cellbuf.AttrInverse | cellbuf.AttrBold},
			false, Cell{Rune: 'a', Fg: cellbuf.ColorInverse + 12, Bg: red + 12}},
		{"reverse video", cellbuf.Cell{Rune: 'a', Fg: red},
			true, Cell{Rune: 'a', Fg: cellbuf.ColorInverse, Bg: red}},
		{"inverse under reverse video", cellbuf.Cell{Rune: 'a', Fg: red, Attr: cellbuf.AttrInverse},
			true, Cell{Rune: 'a', Fg: red, Bg: cellbuf.ColorInvis}},
		{"extended bold", cellbuf.Cell{Rune: 'a', Fg: 200, Attr: cellbuf.AttrFg256 | cellbuf.AttrBold},
			false, Cell{Rune: 'a', Fg: 200, FgExt: true, Bg: cellbuf.ColorInvis}},
		{"extended inverse drops ext", cellbuf.Cell{Rune: 'a', Fg: 200, Attr: cellbuf.AttrFg256 | cellbuf.AttrInverse},
			false, Cell{Rune: 'a', Fg: cellbuf.ColorInverse, Bg: 200}},
		{"space", cellbuf.Cell{Rune: ' ', Fg: red, Bg: cellbuf.ColorBlue},
			false, Cell{Rune: ' ', Fg: cellbuf.ColorInvis, Bg: cellbuf.ColorBlue}},
		{"underlined space", cellbuf.Cell{Rune: ' ', Fg: red, Attr: cellbuf.AttrUnderline},
			false, Cell{Rune: ' ', Fg: red, Bg: cellbuf.ColorInvis, Underline: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeRows{rows: [][]cellbuf.Cell{{tt.cell}}}
			c := New(1, 1)
			c.Compose(src, 1, 1, 0, tt.reverse, false)
			assert.Equal(t, tt.want, c.Grid().Cell(0, 0))
		})
	}
}

func TestComposeBeyondRowWidth(t *testing.T) {
	src := &fakeRows{rows: [][]cellbuf.Cell{{{Rune: 'a'}}}}

	c := New(3, 2)
	spans := c.Compose(src, 2, 3, 0, false, false)
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Row: 1, Start: 0, Len: 3}, spans[1])
	assert.Equal(t, cellbuf.ColorInvis, c.Grid().Cell(2, 0).Bg)

	c.Compose(src, 2, 3, 0, true, false)
	assert.Equal(t, cellbuf.ColorInverseBg, c.Grid().Cell(2, 0).Bg)
}

func TestComposeInvisibleCell(t *testing.T) {
	src := &fakeRows{rows: [][]cellbuf.Cell{{{Rune: 'x', Attr: cellbuf.AttrInvisible}}}}
	c := New(1, 1)
	c.Compose(src, 1, 1, 0, false, false)
	got := c.Grid().Cell(0, 0)
	assert.Equal(t, rune(0), got.Rune)
	assert.Equal(t, cellbuf.ColorInvis, got.Bg)
}

func TestComposeDoubleWidthExtendsSpan(t *testing.T) {
	blank := cellbuf.Cell{}
	src := &fakeRows{rows: [][]cellbuf.Cell{{{Rune: 'a'}, blank, blank}}}
	c := New(3, 1)
	c.Compose(src, 1, 3, 0, false, false)

	lead := cellbuf.Cell{Rune: '世', Attr: cellbuf.AttrDoubleWidth}
	trail := cellbuf.Cell{Attr: cellbuf.AttrDoubleWidth}
	src.rows[0] = []cellbuf.Cell{lead, trail, blank}

	spans := c.Compose(src, 1, 3, 0, false, false)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Row: 0, Start: 0, Len: 2}, spans[0])
}

func TestComposeSpanCoversFirstToLastChange(t *testing.T) {
	s := cellbuf.NewScreen(10, 1)
	s.Feed([]byte("abcdefghij"))
	c := New(10, 1)
	c.Compose(s, 1, 10, 0, false, false)

	s.Feed([]byte("\x1b[2GB\x1b[8GH"))
	spans := c.Compose(s, 1, 10, 0, false, false)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Row: 0, Start: 1, Len: 7}, spans[0])
}

func TestComposeDebugMarkers(t *testing.T) {
	s := cellbuf.NewScreen(3, 3)
	s.Feed([]byte("ab\r\nxyzw"))

	c := New(3, 3)
	c.Compose(s, 3, 3, 0, false, true)

	nl := c.Grid().Cell(1, 0)
	assert.Equal(t, Cell{Rune: '!', Fg: 8, Bg: 4, Strike: true}, nl)
	wrapped := c.Grid().Cell(2, 1)
	assert.Equal(t, Cell{Rune: '!', Fg: 8, Bg: 4, Underline: true}, wrapped)
	assert.Equal(t, 'a', c.Grid().Cell(0, 0).Rune)
}

func TestComposeScrollback(t *testing.T) {
	s := cellbuf.NewScreen(5, 2)
	s.Feed([]byte("one\r\ntwo\r\nthree"))

	c := New(5, 2)
	c.Compose(s, 2, 5, 1, false, false)
	assert.Equal(t, 'o', c.Grid().Cell(0, 0).Rune)
	assert.Equal(t, 't', c.Grid().Cell(0, 1).Rune)
	assert.Equal(t, 'w', c.Grid().Cell(1, 1).Rune)
}

func TestComposeBlockCells(t *testing.T) {
	row := []cellbuf.Cell{
		{Rune: 'a'},
		{Rune: '#', Block: 3, BX: 0, BY: 1},
		{Rune: '#', Block: 3, BX: 1, BY: 1},
	}
	src := &fakeRows{rows: [][]cellbuf.Cell{row}}
	blocks := &fakeBlocks{}
	stats := &frameStats{}

	c := New(3, 1, WithBlocks(blocks), WithObserver(stats))
	spans := c.Compose(src, 1, 3, 0, false, false)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Row: 0, Start: 0, Len: 3}, spans[0])
	assert.Equal(t, Cell{Fg: cellbuf.ColorInvis, Bg: cellbuf.ColorInvis}, c.Grid().Cell(1, 0))

	// Unchanged block cells are not redrawn, but the block is still
	// activated.
	assert.Empty(t, c.Compose(src, 1, 3, 0, false, false))

	assert.Equal(t, 2, blocks.begins)
	assert.Equal(t, 2, blocks.ends)
	require.Len(t, blocks.activated, 4)
	assert.Equal(t, activation{3, 1, -1}, blocks.activated[0])
	assert.Equal(t, 2, stats.frames)
}

// blockHost connects a block manager to a reference screen.
type blockHost struct {
	s *cellbuf.Screen
}

func (h blockHost) Write(p []byte)                         { _, _ = h.s.Write(p) }
func (h blockHost) ExpectBlock(repch rune, b *block.Block) { h.s.ExpectBlock(repch, b) }
func (h blockHost) SetBlockMode(on bool)                   { h.s.SetBlockMode(on) }
func (h blockHost) GridSize() (int, int)                   { return h.s.Size() }
func (h blockHost) CellSize() (int, int)                   { return 8, 16 }

type placedObject struct {
	x, y, w, h int
	destroyed  bool
}

func (o *placedObject) Place(x, y, w, h int) { o.x, o.y, o.w, o.h = x, y, w, h }
func (o *placedObject) Destroy()             { o.destroyed = true }

type mediaFactory struct {
	objects []*placedObject
}

func (f *mediaFactory) NewMedia(*block.Block, media.Mode) (block.Object, error) {
	o := &placedObject{}
	f.objects = append(f.objects, o)
	return o, nil
}

func (f *mediaFactory) NewGraphic(*block.Block) (block.Graphic, error) {
	return nil, block.ErrAssetNotFound
}

func TestComposeActivatesRegisteredBlock(t *testing.T) {
	s := cellbuf.NewScreen(10, 4)
	factory := &mediaFactory{}
	mgr := block.NewManager(s.Blocks(), blockHost{s}, factory)
	s.SetHandlers(cellbuf.Handlers{Command: func(cmd string) {
		_, _ = mgr.Command(cmd)
	}})

	s.Feed([]byte("\x1b}is#5;2;/tmp/a.png\x00\x1b}ib\x00#####\r\n#####\x1b}ie\x00"))

	c := New(10, 4, WithBlocks(mgr))
	require.NotEmpty(t, c.Compose(s, 4, 10, 0, false, false))
	assert.Empty(t, c.Compose(s, 4, 10, 0, false, false))

	active := mgr.Active()
	require.Len(t, active, 1)
	b := active[0]
	assert.Equal(t, block.KindStretch, b.Kind)
	assert.Equal(t, 0, b.X)
	assert.Equal(t, 0, b.Y)
	assert.Equal(t, 5, b.W)
	assert.Equal(t, 2, b.H)

	require.Len(t, factory.objects, 1)
	obj := factory.objects[0]
	assert.Equal(t, placedObject{x: 0, y: 0, w: 5, h: 2}, *obj)

	// Clearing the screen removes the block cells; the next frame
	// destroys the object.
	s.Feed([]byte("\x1b[2J"))
	c.Compose(s, 4, 10, 0, false, false)
	assert.Empty(t, mgr.Active())
	assert.True(t, obj.destroyed)
	assert.Len(t, factory.objects, 1)
}
