package selection

import (
	"strings"

	"github.com/dshills/termcore/internal/cellbuf"
)

// Text returns the selected text, or "" when nothing is selected. Box
// selections end every row with a newline.
func (m *Model) Text() string {
	if !m.Active {
		return ""
	}
	start, end := m.Bounds()
	var out string
	m.src.Read(func(rows cellbuf.Rows) {
		cols, _ := rows.Size()
		if m.Mode == ModeBox {
			var sb strings.Builder
			for y := start.Y; y <= end.Y; y++ {
				s := textRange(rows, cols, Point{start.X, y}, Point{end.X, y})
				sb.WriteString(s)
				if s != "" && !strings.HasSuffix(s, "\n") {
					sb.WriteByte('\n')
				}
			}
			out = sb.String()
			return
		}
		if start != end {
			out = textRange(rows, cols, start, end)
		}
	})
	return out
}

// TextRange returns the text between c1 and c2 in reading order.
func TextRange(rows cellbuf.Rows, c1, c2 Point) string {
	cols, _ := rows.Size()
	return textRange(rows, cols, c1, c2)
}

// textRange walks the rows from c1 to c2. Trailing blanks of a row turn
// into a newline unless the row has more content past the range; rows
// that end at the last column without wrapping get a newline.
func textRange(rows cellbuf.Rows, cols int, c1, c2 Point) string {
	var sb strings.Builder
	for y := c1.Y; y <= c2.Y; y++ {
		cells := rows.Row(y)
		if cells == nil {
			continue
		}
		w := min(len(cells), cols)
		if y == c1.Y && c1.X >= w {
			sb.WriteByte('\n')
			continue
		}
		startX, endX := max(c1.X, 0), min(c2.X, w-1)
		if c1.Y != c2.Y {
			switch y {
			case c1.Y:
				endX = w - 1
			case c2.Y:
				startX = 0
			default:
				startX, endX = 0, w-1
			}
		}

		last0 := -1
	row:
		for x := startX; x <= endX; x++ {
			if cells[x].WideTrail() {
				if x >= endX {
					break
				}
				x++
			}
			if x >= w {
				break
			}
			c := cells[x]
			switch {
			case c.Has(cellbuf.AttrTab):
				last0 = flushBlanks(&sb, last0, x)
				sb.WriteByte('\t')
				x = (x+8)/8*8 - 1
			case c.Blank() && !c.Has(cellbuf.AttrNewline):
				if last0 < 0 {
					last0 = x
				}
			case c.Has(cellbuf.AttrNewline):
				if !c.Blank() {
					last0 = flushBlanks(&sb, last0, x)
					sb.WriteRune(c.Rune)
				}
				last0 = -1
				if y != c2.Y || x != endX {
					sb.WriteByte('\n')
				}
				break row
			default:
				last0 = flushBlanks(&sb, last0, x)
				sb.WriteRune(c.Rune)
				if x == w-1 && x != c2.X && !c.Has(cellbuf.AttrAutowrapped) {
					sb.WriteByte('\n')
				}
			}
		}

		if last0 < 0 {
			continue
		}
		if y != c2.Y || !moreAfter(cells, w, endX) {
			sb.WriteByte('\n')
			continue
		}
		for x := last0; x <= endX && x < w; x++ {
			if cells[x].WideTrail() {
				continue
			}
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func flushBlanks(sb *strings.Builder, last0, x int) int {
	if last0 >= 0 {
		sb.WriteString(strings.Repeat(" ", x-last0))
	}
	return -1
}

// moreAfter reports whether anything but blanks follows column x.
func moreAfter(cells []cellbuf.Cell, w, x int) bool {
	for i := x + 1; i < w; i++ {
		c := cells[i]
		if c.WideTrail() {
			continue
		}
		if !c.Blank() || c.Has(cellbuf.AttrNewline) || c.Has(cellbuf.AttrTab) {
			return true
		}
	}
	return false
}
