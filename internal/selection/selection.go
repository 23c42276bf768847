package selection

import (
	"github.com/dshills/termcore/internal/cellbuf"
)

// DefaultWordSeparators is the separator set used when none is configured.
const DefaultWordSeparators = " '\"()[]{}<>=*!#$&;,|`\\"

// Mode is the selection shape.
type Mode uint8

const (
	// ModeStream selects text in reading order.
	ModeStream Mode = iota
	// ModeBox selects a rectangle of cells.
	ModeBox
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeBox:
		return "box"
	default:
		return "unknown"
	}
}

// Handle identifies an endpoint being dragged.
type Handle uint8

const (
	// HandleNone means no endpoint is being dragged.
	HandleNone Handle = iota
	// HandleStart is the top-left handle.
	HandleStart
	// HandleEnd is the bottom-right handle.
	HandleEnd
)

// Point is a cell position in buffer-row coordinates.
type Point struct {
	X, Y int
}

// Before reports whether p comes before q in reading order.
func (p Point) Before(q Point) bool {
	return p.Y < q.Y || (p.Y == q.Y && p.X < q.X)
}

// Source gives read access to the cells of a buffer.
type Source interface {
	Read(fn func(cellbuf.Rows))
}

type backup struct {
	valid      bool
	start, end Point
	mode       Mode
}

// Model is the selection of one widget. It is not safe for concurrent
// use.
type Model struct {
	src     Source
	wordsep map[rune]bool

	// Start and End are the endpoints in the order they were made; End
	// may come before Start.
	Start, End Point
	Mode       Mode
	// Active is set when something is selected.
	Active bool
	// Making is set while the pointer is dragging out a selection.
	Making bool
	// Grab is the handle being dragged, if any.
	Grab Handle

	backup backup
}

// New creates an empty selection over src.
func New(src Source) *Model {
	m := &Model{src: src}
	m.SetWordSeparators(DefaultWordSeparators)
	return m
}

// SetWordSeparators replaces the separator set. NUL always separates.
func (m *Model) SetWordSeparators(seps string) {
	m.wordsep = make(map[rune]bool, len(seps)+1)
	m.wordsep[0] = true
	for _, r := range seps {
		m.wordsep[r] = true
	}
}

// IsSeparator reports whether r ends a word.
func (m *Model) IsSeparator(r rune) bool {
	return m.wordsep[r]
}

// Clear drops the selection.
func (m *Model) Clear() {
	m.Active = false
	m.Making = false
	m.Grab = HandleNone
}

// Begin starts a selection at (x, y). A stream selection becomes active
// only once it is extended away from its starting cell; a box selection
// is active at once. Beginning a stream selection saves the previous one
// for RestoreBackup and reports whether one was active.
func (m *Model) Begin(x, y int, mode Mode) bool {
	had := m.Active
	if mode == ModeStream {
		m.backup = backup{valid: m.Active, start: m.Start, end: m.End, mode: m.Mode}
		m.Active = false
	} else {
		m.Active = true
	}
	m.Mode = mode
	m.Making = true
	m.Grab = HandleNone
	m.Start = Point{x, y}
	m.End = Point{x, y}
	m.FixDoubleWidth()
	return had
}

// GrabHandle starts dragging handle h of the current selection to (x, y).
func (m *Model) GrabHandle(h Handle, x, y int) {
	if h == HandleNone {
		return
	}
	m.Grab = h
	m.Making = true
	m.Active = true
	m.move(x, y)
	m.FixDoubleWidth()
}

func (m *Model) move(x, y int) {
	if m.Grab == HandleStart {
		m.Start = Point{x, y}
	} else {
		m.End = Point{x, y}
	}
}

// Extend drags the selection to (x, y). It reports whether the
// selection changed.
func (m *Model) Extend(x, y int) bool {
	if !m.Making {
		return false
	}
	p := Point{x, y}
	if !m.Active {
		if p == m.Start {
			return false
		}
		m.Active = true
	}
	m.move(x, y)
	m.FixDoubleWidth()
	if m.Mode == ModeStream {
		m.ExtendToNewline()
	}
	return true
}

// Release finishes a drag at (x, y) and reports whether a selection is
// active afterwards.
func (m *Model) Release(x, y int) bool {
	if !m.Making {
		return m.Active
	}
	m.Making = false
	if m.Active {
		m.move(x, y)
		m.FixDoubleWidth()
		if m.Mode == ModeStream {
			m.ExtendToNewline()
		}
	}
	m.Grab = HandleNone
	return m.Active
}

// RestoreBackup brings back the selection saved by the last Begin. It
// reports false when there was none.
func (m *Model) RestoreBackup() bool {
	if !m.backup.valid {
		return false
	}
	m.Start, m.End, m.Mode = m.backup.start, m.backup.end, m.backup.mode
	m.Active = true
	m.Making = false
	m.backup.valid = false
	return true
}

// SelectLine selects the whole of row y.
func (m *Model) SelectLine(y int) {
	m.src.Read(func(rows cellbuf.Rows) {
		cols, _ := rows.Size()
		m.Start = Point{0, y}
		m.End = Point{cols - 1, y}
	})
	m.Mode = ModeStream
	m.Active = true
	m.Making = false
	m.Grab = HandleNone
}

// Bounds returns the endpoints normalized: in reading order for a stream
// selection and as top-left and bottom-right corners for a box.
func (m *Model) Bounds() (start, end Point) {
	start, end = m.Start, m.End
	if m.Mode == ModeBox {
		if start.X > end.X {
			start.X, end.X = end.X, start.X
		}
		if start.Y > end.Y {
			start.Y, end.Y = end.Y, start.Y
		}
		return start, end
	}
	if end.Before(start) {
		start, end = end, start
	}
	return start, end
}

// Scrolled moves the selection up one row with the content.
func (m *Model) Scrolled() {
	if !m.Active {
		return
	}
	m.Start.Y--
	m.End.Y--
}

// FixDoubleWidth moves any endpoint resting on the trailing half of a
// wide glyph onto its leading half, so the glyph is selected whole or not
// at all.
func (m *Model) FixDoubleWidth() {
	m.src.Read(func(rows cellbuf.Rows) {
		cols, _ := rows.Size()
		m.Start = snapLead(rows, cols, m.Start)
		m.End = snapLead(rows, cols, m.End)
	})
}

func snapLead(rows cellbuf.Rows, cols int, p Point) Point {
	cells := rows.Row(p.Y)
	w := min(len(cells), cols)
	if p.X > 0 && p.X < w && cells[p.X].WideTrail() {
		p.X--
	}
	return p
}

// ExtendToNewline pushes the later endpoint of a stream selection to the
// end of its row when the selected part of that row ends a line.
func (m *Model) ExtendToNewline() {
	if m.Grab == HandleStart || m.Mode != ModeStream || m.End.Before(m.Start) {
		return
	}
	extended := false
	m.src.Read(func(rows cellbuf.Rows) {
		cols, _ := rows.Size()
		x1 := 0
		if m.Start.Y == m.End.Y {
			x1 = m.Start.X
		}
		s := textRange(rows, cols, Point{x1, m.End.Y}, m.End)
		if len(s) > 0 && s[len(s)-1] == '\n' {
			m.End.X = cols - 1
			extended = true
		}
	})
	if extended {
		m.FixDoubleWidth()
	}
}
