package compositor

// Point is a cell position.
type Point struct {
	X, Y int
}

// Before reports whether p comes before q in reading order.
func (p Point) Before(q Point) bool {
	return p.Y < q.Y || (p.Y == q.Y && p.X < q.X)
}

// Handle is the selection handle being dragged.
type Handle uint8

const (
	// HandleNone means no handle is held.
	HandleNone Handle = iota
	// HandleTopLeft is the handle at the start of the selection.
	HandleTopLeft
	// HandleBottomRight is the handle at the end of the selection.
	HandleBottomRight
)

// SelectionMode is the overlay shape of a selection.
type SelectionMode uint8

const (
	// ModeOneLine is a single band: one row, whole rows or a box.
	ModeOneLine SelectionMode = iota
	// ModeDisjoint is two rows that do not overlap horizontally.
	ModeDisjoint
	// ModeTopFull starts at the first column.
	ModeTopFull
	// ModeBottomFull ends at the last column.
	ModeBottomFull
	// ModeMultiLine is a partial first row, full middle rows and a
	// partial last row.
	ModeMultiLine
)

// String returns the mode name.
func (m SelectionMode) String() string {
	switch m {
	case ModeOneLine:
		return "oneline"
	case ModeDisjoint:
		return "disjoint"
	case ModeTopFull:
		return "topfull"
	case ModeBottomFull:
		return "bottomfull"
	case ModeMultiLine:
		return "multiline"
	default:
		return "unknown"
	}
}

// CursorState is the buffer cursor as the overlay needs it.
type CursorState struct {
	X, Y   int
	Hidden bool
}

// SelectionState is a selection in buffer rows, endpoints in input order.
type SelectionState struct {
	Active bool
	Box    bool
	Start  Point
	End    Point
	Grab   Handle
}

// Overlay is where the cursor and selection overlays go.
type Overlay struct {
	CursorVisible bool
	Cursor        Point

	Selection bool
	Mode      SelectionMode
	// Start and End are the normalized endpoints in viewport rows.
	Start Point
	End   Point
	// TopPad is the unselected width before Start on its row; BottomPad
	// the unselected width after End on its row.
	TopPad    int
	BottomPad int
	// Grab is the dragged handle after normalization; it flips when a
	// stream selection's endpoints swap.
	Grab Handle
}

// ComputeOverlay places the overlays for a frame composed at scroll.
func ComputeOverlay(cur CursorState, sel SelectionState, scroll, cols int) Overlay {
	o := Overlay{
		CursorVisible: scroll == 0 && !cur.Hidden,
		Cursor:        Point{X: cur.X, Y: cur.Y},
		Grab:          sel.Grab,
	}
	if !sel.Active {
		return o
	}

	start, end := sel.Start, sel.End
	if sel.Box {
		if start.Y > end.Y {
			start.Y, end.Y = end.Y, start.Y
		}
		if start.X > end.X {
			start.X, end.X = end.X, start.X
		}
	} else if end.Before(start) {
		start, end = end, start
		switch o.Grab {
		case HandleTopLeft:
			o.Grab = HandleBottomRight
		case HandleBottomRight:
			o.Grab = HandleTopLeft
		}
	}

	switch {
	case sel.Box:
		o.Mode = ModeOneLine
	case start.Y == end.Y || (start.X == 0 && end.X == cols-1):
		o.Mode = ModeOneLine
	case start.Y == end.Y-1 && start.X > end.X:
		o.Mode = ModeDisjoint
	case start.X == 0:
		o.Mode = ModeTopFull
	case end.X == cols-1:
		o.Mode = ModeBottomFull
	default:
		o.Mode = ModeMultiLine
	}

	o.Selection = true
	o.TopPad = start.X
	o.BottomPad = cols - end.X - 1
	o.Start = Point{X: start.X, Y: start.Y + scroll}
	o.End = Point{X: end.X, Y: end.Y + scroll}
	return o
}

// Contains reports whether viewport cell (x, y) is inside the selection.
func (o Overlay) Contains(x, y int, box bool) bool {
	if !o.Selection || y < o.Start.Y || y > o.End.Y {
		return false
	}
	if box {
		return x >= o.Start.X && x <= o.End.X
	}
	if y == o.Start.Y && x < o.Start.X {
		return false
	}
	if y == o.End.Y && x > o.End.X {
		return false
	}
	return true
}
