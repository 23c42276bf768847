package compositor

import "github.com/dshills/termcore/internal/cellbuf"

// Cell is one rendered grid position.
type Cell struct {
	Rune        rune
	Fg          cellbuf.Color
	Bg          cellbuf.Color
	FgExt       bool
	BgExt       bool
	Underline   bool
	Strike      bool
	DoubleWidth bool
}

// Span is a run of changed cells in one row.
type Span struct {
	Row   int
	Start int
	Len   int
}

// End returns the column just past the span.
func (s Span) End() int {
	return s.Start + s.Len
}

// Grid holds the rendered cells, one slice per visible row.
type Grid struct {
	cols  int
	rows  int
	cells [][]Cell
}

// NewGrid creates a grid of cols x rows cells.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{}
	g.Resize(cols, rows)
	return g
}

// Size returns the grid size.
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Row returns row y, or nil when out of range.
func (g *Grid) Row(y int) []Cell {
	if y < 0 || y >= g.rows {
		return nil
	}
	return g.cells[y]
}

// Cell returns the cell at (x, y); out of range positions read as zero.
func (g *Grid) Cell(x, y int) Cell {
	row := g.Row(y)
	if x < 0 || x >= len(row) {
		return Cell{}
	}
	return row[x]
}

// Resize changes the grid size, keeping the overlapping cells.
func (g *Grid) Resize(cols, rows int) {
	cols = max(cols, 1)
	rows = max(rows, 1)
	if cols == g.cols && rows == g.rows {
		return
	}

	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
		if y < len(g.cells) {
			copy(cells[y], g.cells[y])
		}
	}
	g.cells = cells
	g.cols = cols
	g.rows = rows
}
