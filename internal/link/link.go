package link

import (
	"net/url"
	"strings"

	"github.com/dshills/termcore/internal/cellbuf"
)

// Kind classifies a link.
type Kind uint8

const (
	KindNone Kind = iota
	KindURL
	KindPath
	KindEmail
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindPath:
		return "path"
	case KindEmail:
		return "email"
	default:
		return "none"
	}
}

var schemes = []string{
	"http://", "https://", "ftp://", "file://", "mailto:", "www.",
}

// IsURL reports whether s starts with a known scheme.
func IsURL(s string) bool {
	ls := strings.ToLower(s)
	for _, p := range schemes {
		if strings.HasPrefix(ls, p) && len(s) > len(p) {
			return true
		}
	}
	return false
}

// IsEmail reports whether s looks like user@host.domain.
func IsEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// Classify returns what kind of link s is. file:// URLs are paths and
// mailto: URLs are email addresses.
func Classify(s string) Kind {
	switch {
	case s == "":
		return KindNone
	case IsURL(s):
		ls := strings.ToLower(s)
		if strings.HasPrefix(ls, "file://") {
			return KindPath
		}
		if strings.HasPrefix(ls, "mailto:") {
			return KindEmail
		}
		return KindURL
	case s[0] == '/':
		return KindPath
	case IsEmail(s):
		return KindEmail
	}
	return KindNone
}

// Target returns what a helper is given for s: the decoded local path of
// a file:// URL, the address of a mailto: URL, or s itself.
func Target(s string) string {
	ls := strings.ToLower(s)
	switch {
	case strings.HasPrefix(ls, "file://"):
		p := s[len("file://"):]
		if d, err := url.PathUnescape(p); err == nil {
			return d
		}
		return p
	case strings.HasPrefix(ls, "mailto:"):
		return s[len("mailto:"):]
	}
	return s
}

// Link is a link found on screen. X1,Y1 is its first cell and X2,Y2 its
// last, in buffer-row coordinates.
type Link struct {
	Text   string
	Kind   Kind
	X1, Y1 int
	X2, Y2 int
}

// Contains reports whether cell (x, y) is part of the link.
func (l Link) Contains(x, y int) bool {
	switch {
	case y < l.Y1 || y > l.Y2:
		return false
	case l.Y1 == l.Y2:
		return x >= l.X1 && x <= l.X2
	case y == l.Y1:
		return x >= l.X1
	case y == l.Y2:
		return x <= l.X2
	}
	return true
}

// maxWrapRows bounds how many wrapped rows a link may span on either side
// of the hovered row.
const maxWrapRows = 8

const separators = " \t\"'`<>[]{}|^\\"

const trailing = ".,;:!?"

type pos struct {
	r    rune
	x, y int
}

// Find returns the link printed at (x, y), if any.
func Find(rows cellbuf.Rows, x, y int) (Link, bool) {
	line, at := logicalLine(rows, x, y)
	if at < 0 || isSeparator(line[at].r) {
		return Link{}, false
	}
	start, end := at, at
	for start > 0 && !isSeparator(line[start-1].r) {
		start--
	}
	for end < len(line)-1 && !isSeparator(line[end+1].r) {
		end++
	}
	if start < at && line[start].r == '(' {
		start++
	}
	for end > at {
		r := line[end].r
		if !strings.ContainsRune(trailing, r) && (r != ')' || hasOpenParen(line[start:end])) {
			break
		}
		end--
	}

	var sb strings.Builder
	for _, p := range line[start : end+1] {
		sb.WriteRune(p.r)
	}
	text := sb.String()
	kind := Classify(text)
	if kind == KindNone {
		return Link{}, false
	}
	return Link{
		Text: text,
		Kind: kind,
		X1:   line[start].x,
		Y1:   line[start].y,
		X2:   line[end].x,
		Y2:   line[end].y,
	}, true
}

func hasOpenParen(run []pos) bool {
	for _, p := range run {
		if p.r == '(' {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == 0 || strings.ContainsRune(separators, r)
}

// logicalLine joins row y with the rows it wrapped from and into and
// returns the joined cells with the index of (x, y), or -1.
func logicalLine(rows cellbuf.Rows, x, y int) ([]pos, int) {
	cols, _ := rows.Size()
	if rows.Row(y) == nil {
		return nil, -1
	}
	first := y
	for i := 0; i < maxWrapRows && wrapped(rows.Row(first-1), cols); i++ {
		first--
	}
	last := y
	for i := 0; i < maxWrapRows && wrapped(rows.Row(last), cols); i++ {
		if rows.Row(last+1) == nil {
			break
		}
		last++
	}

	var line []pos
	at := -1
	for ry := first; ry <= last; ry++ {
		cells := rows.Row(ry)
		w := min(len(cells), cols)
		for cx := 0; cx < w; cx++ {
			c := cells[cx]
			if c.WideTrail() {
				if ry == y && cx == x {
					at = len(line) - 1
				}
				continue
			}
			if ry == y && cx == x {
				at = len(line)
			}
			line = append(line, pos{r: c.Rune, x: cx, y: ry})
		}
	}
	return line, at
}

func wrapped(cells []cellbuf.Cell, cols int) bool {
	w := min(len(cells), cols)
	return w > 0 && cells[w-1].Has(cellbuf.AttrAutowrapped)
}
