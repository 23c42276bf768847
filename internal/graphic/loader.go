package graphic

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/termcore/internal/block"
)

// DefaultTimeout bounds every script call.
const DefaultTimeout = 2 * time.Second

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimeout sets the time limit of script calls.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger handed to graphics.
func WithLogger(lg *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

type compiled struct {
	proto *lua.FunctionProto
	mod   time.Time
	size  int64
}

// Loader builds graphics from files. Compiled files are cached until
// they change on disk.
type Loader struct {
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	resolver Resolver
	cache    map[string]compiled
}

// NewLoader creates a loader resolving assets with r.
func NewLoader(r Resolver, opts ...LoaderOption) *Loader {
	l := &Loader{
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		resolver: r,
		cache:    make(map[string]compiled),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetResolver replaces the asset resolver.
func (l *Loader) SetResolver(r Resolver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolver = r
}

// NewGraphic builds the graphic for an interactive block.
func (l *Loader) NewGraphic(b *block.Block) (block.Graphic, error) {
	g, err := l.Load(b.Path, b.Group)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Load runs the file behind path and builds group from it.
func (l *Loader) Load(path, group string) (*Graphic, error) {
	l.mu.Lock()
	r := l.resolver
	l.mu.Unlock()

	file, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	proto, err := l.compile(file)
	if err != nil {
		return nil, err
	}

	g := newGraphic(group, l.timeout, l.logger)
	groups := make(map[string]*lua.LFunction)
	g.L.SetGlobal("group", g.L.NewFunction(func(L *lua.LState) int {
		groups[L.CheckString(1)] = L.CheckFunction(2)
		return 0
	}))

	if err := g.call(g.L.NewFunctionFromProto(proto)); err != nil {
		g.Destroy()
		return nil, fmt.Errorf("run %s: %w", file, err)
	}
	ctor, ok := groups[group]
	if !ok {
		g.Destroy()
		return nil, fmt.Errorf("%q in %s: %w", group, file, block.ErrGroupNotFound)
	}
	if err := g.call(ctor, g.self); err != nil {
		g.Destroy()
		return nil, fmt.Errorf("build %q: %w", group, err)
	}

	l.logger.Debug("graphic loaded", "file", file, "group", group)
	return g, nil
}

func (l *Loader) compile(file string) (*lua.FunctionProto, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("stat graphic: %w", err)
	}

	l.mu.Lock()
	c, ok := l.cache[file]
	l.mu.Unlock()
	if ok && c.mod.Equal(info.ModTime()) && c.size == info.Size() {
		return c.proto, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open graphic: %w", err)
	}
	defer f.Close()

	chunk, err := parse.Parse(f, file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	proto, err := lua.Compile(chunk, file)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", file, err)
	}

	l.mu.Lock()
	l.cache[file] = compiled{proto: proto, mod: info.ModTime(), size: info.Size()}
	l.mu.Unlock()
	return proto, nil
}
