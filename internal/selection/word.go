package selection

import "github.com/dshills/termcore/internal/cellbuf"

// SelectWord selects the word under (x, y).
func (m *Model) SelectWord(x, y int) {
	m.src.Read(func(rows cellbuf.Rows) {
		cols, _ := rows.Size()
		cells := rows.Row(y)
		if cells == nil {
			return
		}
		m.Start = Point{m.scanLeft(cells, cols, x), y}
		m.End = Point{m.scanRight(cells, cols, x), y}
		m.Mode = ModeStream
		m.Active = true
		m.Making = false
		m.Grab = HandleNone
	})
}

// ExtendWord grows the selection word-wise to take in (x, y): the start
// moves left to a word boundary when (x, y) comes before it in reading
// order, and the end moves right when (x, y) comes after it.
func (m *Model) ExtendWord(x, y int) {
	m.src.Read(func(rows cellbuf.Rows) {
		cols, _ := rows.Size()
		cells := rows.Row(y)
		if cells == nil {
			return
		}
		m.Start, m.End = m.Bounds()
		p := Point{x, y}
		switch {
		case p.Before(m.Start):
			m.Start = Point{m.scanLeft(cells, cols, x), y}
		case m.End.Before(p):
			m.End = Point{m.scanRight(cells, cols, x), y}
		}
		m.Active = true
	})
}

// scanLeft returns the first column of the word holding column x.
func (m *Model) scanLeft(cells []cellbuf.Cell, cols, x int) int {
	w := min(len(cells), cols)
	start := x
	for i := x; i >= 0; i-- {
		if i < w && i > 0 && cells[i].WideTrail() {
			i--
		}
		if i >= w || m.wordsep[cells[i].Rune] {
			break
		}
		start = i
	}
	return start
}

// scanRight returns the last column of the word holding column x.
func (m *Model) scanRight(cells []cellbuf.Cell, cols, x int) int {
	w := min(len(cells), cols)
	end := x
	for i := x; i < cols; i++ {
		if i < w && i < cols-1 && cells[i].WideTrail() {
			end = i
			i++
		}
		if i >= w || m.wordsep[cells[i].Rune] {
			break
		}
		end = i
	}
	return end
}
