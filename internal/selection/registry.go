package selection

import (
	"sync"
	"time"
)

// ReassertWindow is how recently an owner must have claimed a selection
// to take it back when another client grabs it.
const ReassertWindow = 200 * time.Millisecond

// Kind names a system selection.
type Kind uint8

const (
	Primary Kind = iota
	Clipboard
)

// String returns the selection name.
func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Clipboard:
		return "clipboard"
	default:
		return "unknown"
	}
}

// Owner is a widget that can hold a selection.
type Owner interface {
	// SelectionLost tells the owner its selection is gone.
	SelectionLost(kind Kind)
	// ReassertSelection asks the owner to set text as kind again. It is
	// called with no registry lock held and must not block.
	ReassertSelection(kind Kind, text string)
}

type claim struct {
	at   time.Time
	text string
	held bool
}

// Registry records which owners hold a selection. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.Mutex
	now    func() time.Time
	window time.Duration
	owners map[Owner]*[2]claim
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock replaces the registry's time source.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		now:    time.Now,
		window: ReassertWindow,
		owners: make(map[Owner]*[2]claim),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an owner.
func (r *Registry) Register(o Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[o]; !ok {
		r.owners[o] = new([2]claim)
	}
}

// Unregister removes an owner and whatever it held.
func (r *Registry) Unregister(o Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, o)
}

// Claim records that o now holds kind with text.
func (r *Registry) Claim(o Owner, kind Kind, text string) {
	if kind > Clipboard {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.owners[o]
	if !ok {
		c = new([2]claim)
		r.owners[o] = c
	}
	c[kind] = claim{at: r.now(), text: text, held: true}
}

// Take records that o now holds kind with text and takes it from every
// other owner, which is told its selection is gone.
func (r *Registry) Take(o Owner, kind Kind, text string) {
	if kind > Clipboard {
		return
	}
	var lost []Owner
	r.mu.Lock()
	for other, c := range r.owners {
		if other == o || !c[kind].held {
			continue
		}
		c[kind] = claim{}
		lost = append(lost, other)
	}
	c, ok := r.owners[o]
	if !ok {
		c = new([2]claim)
		r.owners[o] = c
	}
	c[kind] = claim{at: r.now(), text: text, held: true}
	r.mu.Unlock()

	for _, other := range lost {
		other.SelectionLost(kind)
	}
}

// Text returns the text of the latest claim on kind.
func (r *Registry) Text(kind Kind) (string, bool) {
	if kind > Clipboard {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		text  string
		at    time.Time
		found bool
	)
	for _, c := range r.owners {
		if c[kind].held && (!found || c[kind].at.After(at)) {
			text, at, found = c[kind].text, c[kind].at, true
		}
	}
	return text, found
}

// Holder returns the owner holding kind, if any.
func (r *Registry) Holder(kind Kind) (Owner, bool) {
	if kind > Clipboard {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		best Owner
		at   time.Time
	)
	for o, c := range r.owners {
		if c[kind].held && (best == nil || c[kind].at.After(at)) {
			best, at = o, c[kind].at
		}
	}
	return best, best != nil
}

// Lost handles another client taking kind. Owners that claimed it within
// the reassert window are asked to set it again; every other holder
// loses it.
func (r *Registry) Lost(kind Kind) {
	if kind > Clipboard {
		return
	}
	type reassert struct {
		o    Owner
		text string
	}
	var (
		lost  []Owner
		again []reassert
	)
	r.mu.Lock()
	now := r.now()
	for o, c := range r.owners {
		cl := &c[kind]
		if !cl.held {
			continue
		}
		if now.Sub(cl.at) < r.window {
			again = append(again, reassert{o, cl.text})
			continue
		}
		cl.held = false
		cl.text = ""
		lost = append(lost, o)
	}
	r.mu.Unlock()

	for _, o := range lost {
		o.SelectionLost(kind)
	}
	for _, a := range again {
		a.o.ReassertSelection(kind, a.text)
	}
}
