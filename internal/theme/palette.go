package theme

import (
	"fmt"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette index layout.
const (
	IndexDef       = 0
	IndexBlack     = 1
	IndexWhite     = 8
	IndexInvis     = 9
	IndexInverse   = 10
	IndexInverseBg = 11

	SetSize       = 12
	BoldOffset    = 12
	FaintOffset   = 24
	IntenseOffset = 48

	IndexedSize  = 96
	ExtendedSize = 256
)

// base colors for the eight ANSI colors.
var (
	ansiNormal = [8]colorful.Color{
		rgb(0, 0, 0),
		rgb(205, 0, 0),
		rgb(0, 205, 0),
		rgb(205, 205, 0),
		rgb(0, 0, 238),
		rgb(205, 0, 205),
		rgb(0, 205, 205),
		rgb(229, 229, 229),
	}
	ansiBright = [8]colorful.Color{
		rgb(127, 127, 127),
		rgb(255, 0, 0),
		rgb(0, 255, 0),
		rgb(255, 255, 0),
		rgb(92, 92, 255),
		rgb(255, 0, 255),
		rgb(0, 255, 255),
		rgb(255, 255, 255),
	}

	defaultFg = rgb(170, 170, 170)
	defaultBg = rgb(32, 32, 32)
	black     = rgb(0, 0, 0)
	white     = rgb(255, 255, 255)
)

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Palette resolves color indices. It is safe for concurrent use.
type Palette struct {
	mu       sync.RWMutex
	name     string
	indexed  [IndexedSize]colorful.Color
	extended [ExtendedSize]colorful.Color
}

// Default returns the built-in palette.
func Default() *Palette {
	p := &Palette{name: "default"}
	p.build(defaultFg, defaultBg)
	for i := range p.extended {
		p.extended[i] = xterm256(i)
	}
	return p
}

// build fills the indexed table from the foreground and background.
func (p *Palette) build(fg, bg colorful.Color) {
	var normal, intense [SetSize]colorful.Color
	normal[IndexDef] = fg
	intense[IndexDef] = fg.BlendLab(white, 0.5).Clamped()
	for i := 0; i < 8; i++ {
		normal[IndexBlack+i] = ansiNormal[i]
		intense[IndexBlack+i] = ansiBright[i]
	}
	normal[IndexInverse] = fg
	normal[IndexInverseBg] = bg
	intense[IndexInverse] = fg
	intense[IndexInverseBg] = bg

	for set := 0; set < IndexedSize/SetSize; set++ {
		// set bits: 1 bold, 2 faint, 4 intense.
		off := set * SetSize
		bold := set&1 != 0
		faint := set&2 != 0
		src := normal
		if set&4 != 0 {
			src = intense
		}
		for i, c := range src {
			switch i {
			case IndexInvis:
				p.indexed[off+i] = bg
				continue
			case IndexInverse, IndexInverseBg:
				p.indexed[off+i] = c
				continue
			}
			if bold {
				c = c.BlendLab(white, 0.25).Clamped()
			}
			if faint {
				c = c.BlendLab(bg, 0.5).Clamped()
			}
			p.indexed[off+i] = c
		}
	}
}

// xterm256 returns entry i of the standard 256-color table.
func xterm256(i int) colorful.Color {
	switch {
	case i < 8:
		return ansiNormal[i]
	case i < 16:
		return ansiBright[i-8]
	case i < 232:
		i -= 16
		level := func(v int) uint8 {
			if v == 0 {
				return 0
			}
			return uint8(55 + v*40)
		}
		return rgb(level(i/36), level((i/6)%6), level(i%6))
	default:
		g := uint8((i-232)*10 + 8)
		return rgb(g, g, g)
	}
}

// Name returns the palette name.
func (p *Palette) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Indexed returns indexed entry i.
func (p *Palette) Indexed(i int) (colorful.Color, error) {
	if i < 0 || i >= IndexedSize {
		return colorful.Color{}, fmt.Errorf("indexed %d: %w", i, ErrIndexRange)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexed[i], nil
}

// Extended returns 256-color entry i.
func (p *Palette) Extended(i int) (colorful.Color, error) {
	if i < 0 || i >= ExtendedSize {
		return colorful.Color{}, fmt.Errorf("extended %d: %w", i, ErrIndexRange)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.extended[i], nil
}

// Resolve returns the color for a display index. visible is false for
// the invisible entries, which let the background show through.
func (p *Palette) Resolve(idx int, extended bool) (c colorful.Color, visible bool) {
	if extended {
		c, err := p.Extended(idx)
		return c, err == nil
	}
	if idx%SetSize == IndexInvis {
		return p.Background(), false
	}
	c, err := p.Indexed(idx)
	return c, err == nil
}

// Background returns the default background.
func (p *Palette) Background() colorful.Color {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexed[IndexInverseBg]
}

// Foreground returns the default foreground.
func (p *Palette) Foreground() colorful.Color {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexed[IndexDef]
}

// SetBase rebuilds the indexed table from new default colors given as hex
// strings ("#rrggbb"). Empty strings keep the current color.
func (p *Palette) SetBase(fgHex, bgHex string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	fg := p.indexed[IndexDef]
	bg := p.indexed[IndexInverseBg]
	if fgHex != "" {
		c, err := colorful.Hex(fgHex)
		if err != nil {
			return fmt.Errorf("foreground %q: %w", fgHex, ErrBadColor)
		}
		fg = c
	}
	if bgHex != "" {
		c, err := colorful.Hex(bgHex)
		if err != nil {
			return fmt.Errorf("background %q: %w", bgHex, ErrBadColor)
		}
		bg = c
	}
	p.build(fg, bg)
	return nil
}

// Override replaces one extended entry with a hex color.
func (p *Palette) Override(i int, hex string) error {
	if i < 0 || i >= ExtendedSize {
		return fmt.Errorf("extended %d: %w", i, ErrIndexRange)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("%q: %w", hex, ErrBadColor)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extended[i] = c
	return nil
}

// Nearest256 returns the index of the 256-color entry perceptually
// closest to an RGB color, searching the cube and the gray ramp.
func Nearest256(r, g, b uint8) int {
	want := rgb(r, g, b)
	best, bestDist := 16, -1.0
	for i := 16; i < ExtendedSize; i++ {
		d := want.DistanceLab(xterm256(i))
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
