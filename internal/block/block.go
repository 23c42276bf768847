package block

import (
	"sync"

	"github.com/dshills/termcore/internal/media"
)

// MaxSize bounds block width and height in cells (exclusive).
const MaxSize = 512

// Kind is the display kind of a block.
type Kind uint8

const (
	// KindStretch stretches media over the block.
	KindStretch Kind = iota
	// KindCenter centers media at its natural aspect.
	KindCenter
	// KindFill fills the block with media as a background.
	KindFill
	// KindThumb shows a clickable thumbnail.
	KindThumb
	// KindInteractive is a scripted interactive graphic.
	KindInteractive
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindStretch:
		return "stretch"
	case KindCenter:
		return "center"
	case KindFill:
		return "fill"
	case KindThumb:
		return "thumb"
	case KindInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// kindFromOpcode maps the registration opcode letter to a kind.
func kindFromOpcode(c byte) (Kind, bool) {
	switch c {
	case 's':
		return KindStretch, true
	case 'c':
		return KindCenter, true
	case 'f':
		return KindFill, true
	case 't':
		return KindThumb, true
	case 'j':
		return KindInteractive, true
	default:
		return 0, false
	}
}

// mediaMode returns the layout mode media objects of this kind use.
func (k Kind) mediaMode() media.Mode {
	switch k {
	case KindCenter:
		return media.ModeCenter
	case KindFill:
		return media.ModeFill
	case KindThumb:
		return media.ModeThumb
	default:
		return media.ModeStretch
	}
}

// Object is a display object owned by a block.
type Object interface {
	// Place positions the object at cell (x, y), sized w×h cells.
	Place(x, y, w, h int)
	// Destroy releases the object. It is called exactly once.
	Destroy()
}

// Block describes an embedded object anchored to a cell region.
type Block struct {
	ID int

	// Path is the media source or, for interactive blocks, the graphic file.
	Path string
	// Link is an optional target opened when a thumbnail is clicked.
	Link string
	// Group names the graphic inside Path for interactive blocks.
	Group string

	Kind Kind

	// W and H are the anchor size in cells.
	W int
	H int

	// X and Y are the placement resolved by the last composition pass.
	X int
	Y int

	// Chid is the channel id the block is bound to, empty when unbound.
	Chid string

	// Cmds are forward command tokens applied every time the graphic
	// object is created.
	Cmds []string

	Active          bool
	WasActive       bool
	WasActiveBefore bool

	// Object is the live display object, nil while inactive.
	Object Object

	// MediaType is the class of Path, set when a media object is created.
	MediaType media.Type

	wired bool
}

// Graphic returns the block's object as an interactive graphic.
func (b *Block) Graphic() (Graphic, bool) {
	if b.Object == nil {
		return nil, false
	}
	g, ok := b.Object.(Graphic)
	return g, ok
}

// Contains reports whether cell (x, y) lies inside the block's placement.
func (b *Block) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

// Registry maps block ids and channel ids to blocks. It is owned by the
// cell buffer; ids start at 1 so that 0 can mean "no block" in a cell.
type Registry struct {
	mu     sync.RWMutex
	nextID int
	blocks map[int]*Block
	chids  map[string]*Block
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		blocks: make(map[int]*Block),
		chids:  make(map[string]*Block),
	}
}

// New registers a new block.
func (r *Registry) New(kind Kind, w, h int, path, link string) *Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	b := &Block{
		ID:   r.nextID,
		Kind: kind,
		W:    w,
		H:    h,
		Path: path,
		Link: link,
	}
	r.blocks[b.ID] = b
	return b
}

// Get returns the block with the given id.
func (r *Registry) Get(id int) (*Block, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blocks[id]
	return b, ok
}

// ByChid returns the block most recently bound to chid.
func (r *Registry) ByChid(chid string) (*Block, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.chids[chid]
	return b, ok
}

// BindChid binds b to chid. Only the first binding of a block is honored;
// it reports whether this call bound it.
func (r *Registry) BindChid(b *Block, chid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.Chid != "" || chid == "" {
		return false
	}
	b.Chid = chid
	r.chids[chid] = b
	return true
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// Reset forgets every block. Live objects are not touched; the manager
// releases those at the end of the next frame.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = make(map[int]*Block)
	r.chids = make(map[string]*Block)
}
