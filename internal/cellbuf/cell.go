package cellbuf

import "github.com/dshills/termcore/internal/theme"

// Color is a palette index. Without an extended flag it indexes the
// terminal palette; with AttrFg256/AttrBg256 it indexes the 256-color table.
type Color uint16

// Palette colors.
const (
	ColorDef       Color = theme.IndexDef
	ColorBlack     Color = theme.IndexBlack
	ColorRed       Color = 2
	ColorGreen     Color = 3
	ColorYellow    Color = 4
	ColorBlue      Color = 5
	ColorMagenta   Color = 6
	ColorCyan      Color = 7
	ColorWhite     Color = theme.IndexWhite
	ColorInvis     Color = theme.IndexInvis
	ColorInverse   Color = theme.IndexInverse
	ColorInverseBg Color = theme.IndexInverseBg
)

// Palette set offsets.
const (
	BoldOffset    Color = theme.BoldOffset
	FaintOffset   Color = theme.FaintOffset
	IntenseOffset Color = theme.IntenseOffset
)

// Attr is a cell attribute bitset.
type Attr uint32

const (
	AttrBold Attr = 1 << iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrStrike
	AttrInverse
	AttrInvisible
	AttrDoubleWidth
	// AttrNewline marks the last cell written before an explicit line feed.
	AttrNewline
	// AttrTab marks a cell where a horizontal tab started.
	AttrTab
	// AttrAutowrapped marks the last cell of a row that wrapped.
	AttrAutowrapped
	AttrFgIntense
	AttrBgIntense
	AttrFg256
	AttrBg256

	AttrNone Attr = 0
)

// Cell is one character position of the buffer.
type Cell struct {
	Rune rune
	Fg   Color
	Bg   Color
	Attr Attr

	// Block is the id of the block covering this cell, 0 for none.
	Block int
	// BX and BY are the cell's offset inside the block.
	BX int
	BY int
}

// Has reports whether all attributes in a are set.
func (c Cell) Has(a Attr) bool {
	return c.Attr&a == a
}

// Blank reports whether the cell shows nothing (empty or a space).
func (c Cell) Blank() bool {
	return c.Rune == 0 || c.Rune == ' '
}

// WideLead reports whether the cell is the leading half of a wide glyph.
func (c Cell) WideLead() bool {
	return c.Rune != 0 && c.Has(AttrDoubleWidth)
}

// WideTrail reports whether the cell is the trailing half of a wide glyph.
func (c Cell) WideTrail() bool {
	return c.Rune == 0 && c.Has(AttrDoubleWidth)
}

// Rows is a frozen view of the buffer.
type Rows interface {
	// Row returns the cells of line y; see the package doc for addressing.
	// It returns nil for lines that do not exist.
	Row(y int) []Cell
	// Size returns the screen size in cells.
	Size() (cols, rows int)
	// Backscroll returns the number of scrollback lines.
	Backscroll() int
}
