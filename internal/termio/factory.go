package termio

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/graphic"
	"github.com/dshills/termcore/internal/media"
)

// MediaObject stands in for a media display object: it records where the
// block is placed and how the media should be laid out. Painting it is
// up to the display surface.
type MediaObject struct {
	Path     string
	Type     media.Type
	Mode     media.Mode
	X, Y     int
	W, H     int
	Restored bool

	f         *Factory
	id        int
	destroyed bool
}

// Place implements block.Object.
func (o *MediaObject) Place(x, y, w, h int) {
	o.X, o.Y, o.W, o.H = x, y, w, h
}

// Destroy implements block.Object.
func (o *MediaObject) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	if o.Mode.Has(media.ModeSave) {
		o.f.save(o.id)
	}
}

// Factory creates block display objects: media placeholders for media
// blocks and Lua graphics for interactive ones.
type Factory struct {
	loader *graphic.Loader

	mu    sync.Mutex
	saved map[int]bool
}

var _ block.Factory = (*Factory)(nil)

// NewFactory creates a factory building graphics with loader. A nil
// loader refuses interactive blocks.
func NewFactory(loader *graphic.Loader) *Factory {
	return &Factory{loader: loader, saved: make(map[int]bool)}
}

// NewMedia implements block.Factory. Sources that do not exist yet are
// reported as missing assets so activation is retried.
func (f *Factory) NewMedia(b *block.Block, mode media.Mode) (block.Object, error) {
	if err := media.Probe(b.Path); err != nil {
		return nil, fmt.Errorf("%w: %w", block.ErrAssetNotFound, err)
	}
	o := &MediaObject{
		Path: b.Path,
		Type: media.Classify(b.Path),
		Mode: mode,
		f:    f,
		id:   b.ID,
	}
	if mode.Has(media.ModeRecover) {
		f.mu.Lock()
		o.Restored = f.saved[b.ID]
		f.mu.Unlock()
	}
	return o, nil
}

// NewGraphic implements block.Factory.
func (f *Factory) NewGraphic(b *block.Block) (block.Graphic, error) {
	if f.loader == nil {
		return nil, fmt.Errorf("no graphic loader: %w", block.ErrAssetNotFound)
	}
	return f.loader.NewGraphic(b)
}

// Configure points the graphic loader at the configured theme and
// object libraries.
func (f *Factory) Configure(cfg *config.Config) {
	if f.loader == nil || cfg == nil {
		return
	}
	f.loader.SetResolver(Resolver(cfg))
}

func (f *Factory) save(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[id] = true
}

// Resolver returns the graphic asset resolver for cfg: configured
// object libraries first, then the default ones.
func Resolver(cfg *config.Config) graphic.Resolver {
	libs := append([]string(nil), cfg.Theme.ObjLib...)
	libs = append(libs, graphic.DefaultLibs(cfg.Theme.DataDir)...)
	r := graphic.Resolver{Libs: libs}
	if cfg.Theme.DataDir != "" && cfg.Theme.Name != "" {
		r.Theme = filepath.Join(cfg.Theme.DataDir, "themes", cfg.Theme.Name+".lua")
	}
	return r
}
