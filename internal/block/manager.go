package block

import (
	"fmt"
	"log/slog"

	"github.com/dshills/termcore/internal/media"
)

// Host is what the manager needs from the widget and its cell buffer.
type Host interface {
	// Write sends bytes to the running program.
	Write(p []byte)
	// ExpectBlock tells the buffer that repch, printed in block mode,
	// stands for cells of b.
	ExpectBlock(repch rune, b *Block)
	// SetBlockMode turns block replacement on or off.
	SetBlockMode(on bool)
	// GridSize returns the visible grid size in cells.
	GridSize() (cols, rows int)
	// CellSize returns the size of one cell in pixels.
	CellSize() (w, h int)
}

// Factory creates display objects for blocks.
type Factory interface {
	// NewMedia creates a media object showing b.Path.
	NewMedia(b *Block, mode media.Mode) (Object, error)
	// NewGraphic creates the interactive graphic b.Group from b.Path.
	NewGraphic(b *Block) (Graphic, error)
}

// Observer receives block lifecycle and back-channel events.
type Observer interface {
	ObjectCreated(kind Kind)
	ObjectDestroyed(kind Kind)
	EnvelopeSent(kind string)
}

type nopObserver struct{}

func (nopObserver) ObjectCreated(Kind)   {}
func (nopObserver) ObjectDestroyed(Kind) {}
func (nopObserver) EnvelopeSent(string)  {}

// Policy controls the thumbnail click affordance.
type Policy struct {
	// Inline allows previews inside the widget.
	Inline bool
	// LocalGeneral is the helper command for local files, if any.
	LocalGeneral string
}

// Click is the outcome of clicking a thumbnail: either run Helper with
// Target, or, when Helper is empty, pop up Target inside the widget.
type Click struct {
	Helper string
	Target string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver sets the manager's observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithPolicy sets the initial click policy.
func WithPolicy(p Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// Manager runs block lifecycles, the block command protocol and the
// back-channels. It is not safe for concurrent use; all calls come from
// the widget goroutine.
type Manager struct {
	reg      *Registry
	host     Host
	factory  Factory
	logger   *slog.Logger
	observer Observer
	policy   Policy

	active []*Block
	subs   map[string]struct{}
}

// NewManager creates a manager over a buffer's block registry.
func NewManager(reg *Registry, host Host, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		reg:      reg,
		host:     host,
		factory:  factory,
		logger:   slog.Default(),
		observer: nopObserver{},
		subs:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the block registry.
func (m *Manager) Registry() *Registry {
	return m.reg
}

// SetPolicy replaces the click policy.
func (m *Manager) SetPolicy(p Policy) {
	m.policy = p
}

// Active returns the blocks that were visible in the last frame.
func (m *Manager) Active() []*Block {
	out := make([]*Block, len(m.active))
	copy(out, m.active)
	return out
}

// BeginFrame starts a composition pass: every active block is marked as
// not yet seen.
func (m *Manager) BeginFrame() {
	for _, b := range m.active {
		b.WasActive = b.Active
		b.Active = false
	}
}

// Activate marks the block id as seen at placement (x, y), creating its
// display object on first sight. Unknown ids are ignored.
func (m *Manager) Activate(id, x, y int) {
	b, ok := m.reg.Get(id)
	if !ok {
		return
	}
	b.X, b.Y = x, y
	if b.Active {
		return
	}
	if b.Object != nil {
		b.Active = true
		return
	}
	if err := m.create(b); err != nil {
		m.logger.Debug("block activation deferred", "id", b.ID, "path", b.Path, "err", err)
		return
	}
	b.Active = true
	b.WasActiveBefore = true
	if !b.WasActive {
		m.active = append(m.active, b)
	}
}

// EndFrame finishes a composition pass: blocks not seen lose their
// object and leave the active set; the rest are placed.
func (m *Manager) EndFrame() {
	kept := m.active[:0]
	for _, b := range m.active {
		if !b.Active {
			b.WasActive = false
			m.destroy(b)
			continue
		}
		b.Object.Place(b.X, b.Y, b.W, b.H)
		kept = append(kept, b)
	}
	for i := len(kept); i < len(m.active); i++ {
		m.active[i] = nil
	}
	m.active = kept
}

// Close destroys every live object.
func (m *Manager) Close() {
	for _, b := range m.active {
		b.Active = false
		b.WasActive = false
		m.destroy(b)
	}
	m.active = nil
}

func (m *Manager) create(b *Block) error {
	if m.factory == nil {
		return fmt.Errorf("no object factory: %w", ErrAssetNotFound)
	}
	if b.Kind == KindInteractive {
		if b.Path == "" || b.Group == "" {
			return ErrGroupNotFound
		}
		g, err := m.factory.NewGraphic(b)
		if err != nil {
			return err
		}
		b.Object = g
		m.observer.ObjectCreated(b.Kind)
		if err := m.RunCommands(b, b.Cmds, true); err != nil {
			m.logger.Debug("block commands", "id", b.ID, "err", err)
		}
		return nil
	}

	mode := b.Kind.mediaMode()
	if !b.WasActiveBefore {
		mode |= media.ModeSave
	} else {
		mode |= media.ModeRecover | media.ModeSave
	}
	obj, err := m.factory.NewMedia(b, mode)
	if err != nil {
		return err
	}
	b.Object = obj
	b.MediaType = media.Classify(b.Path)
	m.observer.ObjectCreated(b.Kind)
	return nil
}

func (m *Manager) destroy(b *Block) {
	if b.Object == nil {
		return
	}
	b.Object.Destroy()
	b.Object = nil
	b.wired = false
	m.observer.ObjectDestroyed(b.Kind)
}

// Subscribe allows back-channel traffic for chid.
func (m *Manager) Subscribe(chid string) {
	m.subs[chid] = struct{}{}
}

// Unsubscribe stops back-channel traffic for chid.
func (m *Manager) Unsubscribe(chid string) {
	delete(m.subs, chid)
}

// ClearSubscriptions stops all back-channel traffic.
func (m *Manager) ClearSubscriptions() {
	m.subs = make(map[string]struct{})
}

// Subscribed reports whether chid may send back-channel traffic.
func (m *Manager) Subscribed(chid string) bool {
	if chid == "" {
		return false
	}
	_, ok := m.subs[chid]
	return ok
}

func (m *Manager) wire(b *Block, g Graphic) {
	g.OnSignal(func(signal, source string) {
		m.sendSignal(b, signal, source)
	})
	g.OnMessage(func(id int, msg Message) {
		m.sendMessage(b, id, msg)
	})
	b.wired = true
}

func (m *Manager) sendSignal(b *Block, signal, source string) {
	if !m.Subscribed(b.Chid) {
		return
	}
	if dragSignals[signal] {
		var v1, v2 float64
		if g, ok := b.Graphic(); ok {
			v1, v2 = g.DragValue(source)
		}
		m.host.Write(dragEnvelope(b.Chid, signal, source, v1, v2))
		m.observer.EnvelopeSent("drag")
		return
	}
	m.host.Write(signalEnvelope(b.Chid, signal, source))
	m.observer.EnvelopeSent("signal")
}

func (m *Manager) sendMessage(b *Block, id int, msg Message) {
	if !m.Subscribed(b.Chid) {
		return
	}
	m.host.Write(messageEnvelope(b.Chid, id, msg))
	m.observer.EnvelopeSent("message")
}

// Clicked resolves a click on a thumbnail block.
func (m *Manager) Clicked(b *Block) Click {
	target := b.Path
	if b.Link != "" {
		t := media.Classify(b.Link)
		if !m.policy.Inline || !t.Inline() {
			if m.policy.LocalGeneral != "" {
				return Click{Helper: m.policy.LocalGeneral, Target: b.Link}
			}
		}
		target = b.Link
	}
	return Click{Target: target}
}

// At returns the active block placed over cell (x, y).
func (m *Manager) At(x, y int) (*Block, bool) {
	for _, b := range m.active {
		if b.Contains(x, y) {
			return b, true
		}
	}
	return nil, false
}
