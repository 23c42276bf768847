package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/termcore/internal/compositor"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/termio"
	"github.com/dshills/termcore/internal/theme"
)

// Placeholder runes painted over block placements.
const (
	MediaPlaceholder   = '░'
	GraphicPlaceholder = '▒'
)

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the surface's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPalette sets the color palette.
func WithPalette(p *theme.Palette) Option {
	return func(s *Surface) {
		if p != nil {
			s.palette = p
		}
	}
}

// WithKeyFilter installs fn ahead of the widget. Keys it returns true
// for are not delivered.
func WithKeyFilter(fn func(*tcell.EventKey) bool) Option {
	return func(s *Surface) {
		s.filter = fn
	}
}

// Surface draws widget frames on a tcell screen and feeds it input.
type Surface struct {
	screen  tcell.Screen
	logger  *slog.Logger
	filter  func(*tcell.EventKey) bool
	mu      sync.Mutex
	palette *theme.Palette
	mouse   mouseState
	pasting bool
}

// New creates a surface on screen. The screen is initialized by Init.
func New(screen tcell.Screen, opts ...Option) *Surface {
	s := &Surface{
		screen:  screen,
		logger:  slog.Default(),
		palette: theme.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init initializes the screen with mouse and bracketed paste enabled.
func (s *Surface) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	s.screen.EnableMouse()
	s.screen.EnablePaste()
	return nil
}

// Fini restores the terminal.
func (s *Surface) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Fini()
}

// Size returns the screen size in cells.
func (s *Surface) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Size()
}

// SetPalette replaces the palette; the next frame uses it.
func (s *Surface) SetPalette(p *theme.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.palette = p
}

// Beep rings the terminal bell.
func (s *Surface) Beep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.screen.Beep(); err != nil {
		s.logger.Debug("beep", "err", err)
	}
}

// Draw paints f and shows it.
func (s *Surface) Draw(f termio.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, rows := s.screen.Size()
	for y := 0; y < f.Rows && y < rows; y++ {
		for x := 0; x < f.Cols && x < cols; x++ {
			c := f.Cells[y][x]
			// tcell draws a wide glyph over both of its cells.
			if x > 0 && c.Rune == 0 && c.DoubleWidth && f.Cells[y][x-1].Rune != 0 {
				continue
			}
			st := s.style(c)
			if f.Overlay.Contains(x, y, f.Box) {
				st = st.Reverse(true)
			}
			if f.HasLink && onLink(f.Link.X1, f.Link.Y1, f.Link.X2, f.Link.Y2, f.Cols, x, y) {
				st = st.Underline(true)
			}
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			s.screen.SetContent(x, y, r, nil, st)
		}
	}
	for _, b := range f.Blocks {
		s.placeholder(b, cols, rows)
	}
	if f.Overlay.CursorVisible {
		s.screen.ShowCursor(f.Overlay.Cursor.X, f.Overlay.Cursor.Y)
	} else {
		s.screen.HideCursor()
	}
	s.screen.Show()
}

// onLink reports whether (x, y) lies in the link span from (x1, y1) to
// (x2, y2), which may wrap across rows.
func onLink(x1, y1, x2, y2, cols, x, y int) bool {
	if y < y1 || y > y2 {
		return false
	}
	if y == y1 && x < x1 {
		return false
	}
	if y == y2 && x > x2 {
		return false
	}
	return x < cols
}

func (s *Surface) placeholder(b termio.Placement, cols, rows int) {
	r := MediaPlaceholder
	if b.Interactive {
		r = GraphicPlaceholder
	}
	fg, _ := s.palette.Resolve(theme.IndexDef, false)
	bg := s.palette.Background()
	st := tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))
	for y := b.Y; y < b.Y+b.H && y < rows; y++ {
		for x := b.X; x < b.X+b.W && x < cols; x++ {
			if x >= 0 && y >= 0 {
				s.screen.SetContent(x, y, r, nil, st)
			}
		}
	}
	if b.Y < 0 || b.Y >= rows {
		return
	}
	for i, ch := range []rune(path.Base(b.Path)) {
		x := b.X + i
		if i >= b.W || x >= cols {
			break
		}
		if x >= 0 {
			s.screen.SetContent(x, b.Y, ch, nil, st)
		}
	}
}

func (s *Surface) style(c compositor.Cell) tcell.Style {
	fg, visible := s.palette.Resolve(int(c.Fg), c.FgExt)
	bg, _ := s.palette.Resolve(int(c.Bg), c.BgExt)
	if !visible {
		fg = bg
	}
	st := tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))
	if c.Underline {
		st = st.Underline(true)
	}
	if c.Strike {
		st = st.StrikeThrough(true)
	}
	return st
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Run delivers input to w until ctx is done or the screen is finalized.
// It sizes w to the screen first.
func (s *Surface) Run(ctx context.Context, w *termio.Widget) error {
	w.Resize(s.Size())
	stop := context.AfterFunc(ctx, func() {
		if err := s.screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
			s.logger.Debug("wake event loop", "err", err)
		}
	})
	defer stop()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		s.dispatch(ev, w)
	}
}

func (s *Surface) dispatch(ev tcell.Event, w *termio.Widget) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if s.filter != nil && s.filter(e) {
			return
		}
		k := Key(e)
		if s.pasting {
			k.Key, k.Mods = termio.KeyOther, 0
		}
		w.Key(k)
	case *tcell.EventMouse:
		for _, me := range s.mouse.convert(e) {
			w.Mouse(me)
		}
	case *tcell.EventResize:
		w.RequestResize(e.Size())
	case *tcell.EventPaste:
		s.pasting = e.Start()
	}
}

// Palette builds the palette cfg describes.
func Palette(cfg *config.Config) (*theme.Palette, error) {
	p := theme.Default()
	if err := p.SetBase(cfg.Theme.Foreground, cfg.Theme.Background); err != nil {
		return nil, err
	}
	for i, hex := range cfg.PaletteOverrides() {
		if err := p.Override(i, hex); err != nil {
			return nil, err
		}
	}
	return p, nil
}
