package termio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/compositor"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/link"
	"github.com/dshills/termcore/internal/media"
	"github.com/dshills/termcore/internal/mouse"
	"github.com/dshills/termcore/internal/selection"
	"github.com/dshills/termcore/internal/timer"
)

// Timer delays.
const (
	RenderInterval = time.Second / 60
	HoverDelay     = 50 * time.Millisecond
	LinkDelay      = 200 * time.Millisecond
	ResizeDelay    = 0
)

// WheelStep is the number of rows one wheel notch scrolls.
const WheelStep = 4

// Option configures a Widget.
type Option func(*Widget)

// WithLogger sets the widget's logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithScheduler sets where timers run. The default is a timer.Loop the
// caller must run; see Loop.
func WithScheduler(s timer.Scheduler) Option {
	return func(w *Widget) {
		if s != nil {
			w.sched = s
		}
	}
}

// WithClock replaces the time source used for click detection.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		if now != nil {
			w.now = now
		}
	}
}

// WithClipboard sets the clipboard.
func WithClipboard(c Clipboard) Option {
	return func(w *Widget) {
		w.clip = c
	}
}

// WithSelectionRegistry shares selection ownership with other widgets.
func WithSelectionRegistry(r *selection.Registry) Option {
	return func(w *Widget) {
		if r != nil {
			w.selReg = r
		}
	}
}

// WithLauncher sets how link helpers are started.
func WithLauncher(l link.Launcher) Option {
	return func(w *Widget) {
		w.launcher = l
	}
}

// WithFactory sets the block object factory.
func WithFactory(f block.Factory) Option {
	return func(w *Widget) {
		w.factory = f
	}
}

// WithObserver sets the statistics observer.
func WithObserver(o Observer) Option {
	return func(w *Widget) {
		if o != nil {
			w.observer = o
		}
	}
}

// WithConfig applies cfg when the widget is created.
func WithConfig(cfg *config.Config) Option {
	return func(w *Widget) {
		w.cfg = cfg
	}
}

// OnFrame sets the frame handler.
func OnFrame(fn func(Frame)) Option {
	return func(w *Widget) {
		w.onFrame = fn
	}
}

// OnNotify sets the notification handler.
func OnNotify(fn func(Notification)) Option {
	return func(w *Widget) {
		w.onNotify = fn
	}
}

type linkPress struct {
	down bool
	x, y int
	dnd  bool
}

// Widget presents one terminal buffer.
type Widget struct {
	id       uuid.UUID
	buf      Buffer
	logger   *slog.Logger
	sched    timer.Scheduler
	loop     *timer.Loop
	now      func() time.Time
	clip     Clipboard
	selReg   *selection.Registry
	launcher link.Launcher
	factory  block.Factory
	observer Observer
	cfg      *config.Config
	onFrame  func(Frame)
	onNotify func(Notification)

	mu       sync.Mutex
	closed   bool
	comp     *compositor.Compositor
	blocks   *block.Manager
	sel      *selection.Model
	reporter *mouse.Reporter
	clicks   *mouse.ClickTracker
	links    *link.Dispatcher

	cols, rows   int
	cellW, cellH int
	scroll       int
	debug        bool

	jumpOnChange   bool
	jumpOnKeypress bool
	dragThreshold  int

	mouseX, mouseY int
	didClick       bool
	hover          link.Link
	hovering       bool
	press          linkPress
	ctrlClick      bool
	wantSize       [2]int

	renderSlot *timer.Slot
	hoverSlot  *timer.Slot
	linkSlot   *timer.Slot
	resizeSlot *timer.Slot

	pending []Notification
	frame   *Frame
	seq     uint64
}

var _ selection.Owner = (*Widget)(nil)

// New creates a widget over buf and takes over buf's notifications.
func New(buf Buffer, opts ...Option) *Widget {
	w := &Widget{
		id:       uuid.New(),
		buf:      buf,
		logger:   slog.Default(),
		now:      time.Now,
		observer: nopObserver{},
		cellW:    8,
		cellH:    16,

		jumpOnChange:   true,
		jumpOnKeypress: true,
		dragThreshold:  16,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sched == nil {
		w.loop = timer.NewLoop(timer.WithLogger(w.logger))
		w.sched = w.loop
	}
	if w.selReg == nil {
		w.selReg = selection.NewRegistry()
	}
	if w.factory == nil {
		w.factory = NewFactory(nil)
	}
	w.logger = w.logger.With("widget", w.id.String())

	w.cols, w.rows = buf.Size()
	w.sel = selection.New(buf)
	w.reporter = mouse.NewReporter()
	w.clicks = mouse.NewClickTracker(mouse.DefaultClickTime, 0)
	w.links = link.NewDispatcher(link.Helpers{}, w.launcher, link.WithDispatchLogger(w.logger))
	w.blocks = block.NewManager(buf.Blocks(), blockHost{w}, w.factory,
		block.WithLogger(w.logger), block.WithObserver(w.observer))
	w.comp = compositor.New(w.cols, w.rows,
		compositor.WithBlocks(w.blocks), compositor.WithObserver(w.observer))

	w.renderSlot = timer.NewSlot(w.sched)
	w.hoverSlot = timer.NewSlot(w.sched)
	w.linkSlot = timer.NewSlot(w.sched)
	w.resizeSlot = timer.NewSlot(w.sched)

	w.selReg.Register(w)
	if w.cfg != nil {
		w.applyConfig(w.cfg)
	}
	buf.SetHandlers(cellbuf.Handlers{
		Change:          w.bufferChanged,
		Scroll:          w.bufferScrolled,
		Title:           func(t string) { w.do(func() { w.notify(NotifyTitle, t) }) },
		Icon:            func(i string) { w.do(func() { w.notify(NotifyIcon, i) }) },
		Bell:            func() { w.do(func() { w.notify(NotifyBell, "") }) },
		Exited:          func() { w.do(func() { w.notify(NotifyExited, "") }) },
		CancelSelection: w.cancelSelection,
		Command:         w.command,
	})
	return w
}

// ID returns the widget's unique id.
func (w *Widget) ID() uuid.UUID {
	return w.id
}

// Loop returns the widget's own timer loop, or nil when a scheduler was
// supplied. The caller runs it.
func (w *Widget) Loop() *timer.Loop {
	return w.loop
}

// do runs fn with the widget locked, then delivers what fn produced.
func (w *Widget) do(fn func()) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	fn()
	notes, frame := w.pending, w.frame
	w.pending, w.frame = nil, nil
	onFrame, onNotify := w.onFrame, w.onNotify
	w.mu.Unlock()

	if frame != nil && onFrame != nil {
		onFrame(*frame)
	}
	if onNotify != nil {
		for _, n := range notes {
			onNotify(n)
		}
	}
}

// Close releases block objects and stops the widget's timers. The
// buffer's notifications are detached.
func (w *Widget) Close() {
	w.do(func() {
		w.blocks.Close()
		w.renderSlot.Cancel()
		w.hoverSlot.Cancel()
		w.linkSlot.Cancel()
		w.resizeSlot.Cancel()
		w.closed = true
	})
	w.selReg.Unregister(w)
	w.buf.SetHandlers(cellbuf.Handlers{})
	if w.loop != nil {
		w.loop.Stop()
	}
}

// ConfigUpdate applies cfg to a running widget.
func (w *Widget) ConfigUpdate(cfg *config.Config) {
	if cfg == nil {
		return
	}
	w.do(func() {
		w.applyConfig(cfg)
		w.queueRender()
	})
}

func (w *Widget) applyConfig(cfg *config.Config) {
	w.cfg = cfg
	w.sel.SetWordSeparators(cfg.Behavior.WordSeparators)
	w.jumpOnChange = cfg.Behavior.JumpOnChange
	w.jumpOnKeypress = cfg.Behavior.JumpOnKeypress
	w.dragThreshold = cfg.Behavior.LinkDragThreshold
	if cfg.Font.CellWidth > 0 {
		w.cellW = cfg.Font.CellWidth
	}
	if cfg.Font.CellHeight > 0 {
		w.cellH = cfg.Font.CellHeight
	}
	if cfg.Theme.Debug {
		w.debug = true
	}
	w.links.SetHelpers(Helpers(cfg))
	w.blocks.SetPolicy(block.Policy{
		Inline:       cfg.Helper.Inline,
		LocalGeneral: cfg.Helper.Local.General,
	})
	if f, ok := w.factory.(*Factory); ok {
		f.Configure(cfg)
	}
}

// Helpers converts the helper section of cfg to a link helper table.
func Helpers(cfg *config.Config) link.Helpers {
	h := cfg.Helper
	return link.Helpers{
		Email:  h.Email,
		URL:    link.HelperSet{General: h.URL.General, Video: h.URL.Video, Image: h.URL.Image},
		Local:  link.HelperSet{General: h.Local.General, Video: h.Local.Video, Image: h.Local.Image},
		Inline: h.Inline,
	}
}

// Scroll returns how many rows the view is scrolled back.
func (w *Widget) Scroll() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scroll
}

// SetScroll scrolls the view back n rows, clamped to the scrollback.
func (w *Widget) SetScroll(n int) {
	w.do(func() {
		w.setScroll(n)
	})
}

func (w *Widget) setScroll(n int) {
	n = max(0, min(n, w.buf.Backscroll()))
	if n != w.scroll {
		w.scroll = n
		w.queueRender()
	}
}

// Debug reports whether debug rendering is on.
func (w *Widget) Debug() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.debug
}

// SetDebug turns debug rendering on or off.
func (w *Widget) SetDebug(on bool) {
	w.do(func() {
		w.debug = on
		w.queueRender()
	})
}

// Title returns the title set by the program.
func (w *Widget) Title() string {
	return w.buf.Title()
}

// Icon returns the icon name set by the program.
func (w *Widget) Icon() string {
	return w.buf.Icon()
}

// GridSize returns the grid size in cells.
func (w *Widget) GridSize() (cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cols, w.rows
}

// Resize sets the grid size at once and composes a frame.
func (w *Widget) Resize(cols, rows int) {
	w.resize(cols, rows)
}

// RequestResize sets the grid size after ResizeDelay; only the last
// request before the timer fires is applied.
func (w *Widget) RequestResize(cols, rows int) {
	w.do(func() {
		w.wantSize = [2]int{cols, rows}
		w.resizeSlot.Arm(ResizeDelay, func() {
			w.mu.Lock()
			size := w.wantSize
			w.mu.Unlock()
			w.resize(size[0], size[1])
		})
	})
}

// resize runs without the lock held: the buffer reports the change
// through its handlers before Resize returns.
func (w *Widget) resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	w.mu.Lock()
	same := w.closed || (cols == w.cols && rows == w.rows)
	w.mu.Unlock()
	if same {
		return
	}
	w.buf.Resize(cols, rows)
	w.do(func() {
		w.cols, w.rows = cols, rows
		w.scroll = min(w.scroll, w.buf.Backscroll())
		w.compose()
		w.notify(NotifyMiniviewShow, "")
	})
}

// Blocks returns the placements of the blocks shown in the last frame.
func (w *Widget) Blocks() []Placement {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.placements()
}

func (w *Widget) placements() []Placement {
	active := w.blocks.Active()
	out := make([]Placement, 0, len(active))
	for _, b := range active {
		p := Placement{
			ID: b.ID, Kind: b.Kind, Path: b.Path, Link: b.Link,
			X: b.X, Y: b.Y, W: b.W, H: b.H,
			MediaType: b.MediaType,
		}
		_, p.Interactive = b.Graphic()
		out = append(out, p)
	}
	return out
}

// Placement is a block shown in a frame, in viewport cells.
type Placement struct {
	ID          int
	Kind        block.Kind
	Path        string
	Link        string
	X, Y        int
	W, H        int
	MediaType   media.Type
	Interactive bool
}
