package link

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/termcore/internal/media"
)

// Default helpers when none is configured.
const (
	DefaultEmailHelper = "xdg-email"
	DefaultOpenHelper  = "xdg-open"
)

// HelperSet names the commands for one locality, by media type.
type HelperSet struct {
	General string
	Video   string
	Image   string
}

func (h HelperSet) pick(t media.Type) string {
	switch t {
	case media.TypeImage, media.TypeScale, media.TypeEdje:
		return h.Image
	case media.TypeMovie:
		return h.Video
	}
	return h.General
}

// Helpers is the helper table.
type Helpers struct {
	Email string
	URL   HelperSet
	Local HelperSet
	// Inline prefers popups inside the widget for media links.
	Inline bool
}

// Action is the outcome of activating a link. When Popup is set the
// widget shows Target itself; otherwise Command is run with Args.
type Action struct {
	Popup   bool
	Target  string
	Command string
	Args    []string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the dispatcher's logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher resolves activated links against the helper table.
type Dispatcher struct {
	helpers  Helpers
	launcher Launcher
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil launcher never runs
// anything.
func NewDispatcher(h Helpers, l Launcher, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{helpers: h, launcher: l, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetHelpers replaces the helper table.
func (d *Dispatcher) SetHelpers(h Helpers) {
	d.helpers = h
}

// Helpers returns the helper table.
func (d *Dispatcher) Helpers() Helpers {
	return d.helpers
}

// Resolve decides what activating link does. With ctrlHeld the inline
// popup is skipped.
func (d *Dispatcher) Resolve(link string, ctrlHeld bool) (Action, error) {
	kind := Classify(link)
	target := Target(link)
	switch kind {
	case KindEmail:
		return d.command(d.helpers.Email, DefaultEmailHelper, target), nil
	case KindPath, KindURL:
		t := media.Classify(target)
		if d.helpers.Inline && !ctrlHeld && t.Inline() {
			return Action{Popup: true, Target: link}, nil
		}
		set := d.helpers.URL
		if kind == KindPath {
			set = d.helpers.Local
		}
		return d.command(set.pick(t), DefaultOpenHelper, target), nil
	}
	return Action{}, fmt.Errorf("%q: %w", link, ErrNoLink)
}

func (d *Dispatcher) command(helper, fallback, target string) Action {
	fields := strings.Fields(helper)
	if len(fields) == 0 {
		fields = []string{fallback}
	}
	args := append(fields[1:len(fields):len(fields)], target)
	return Action{Target: target, Command: fields[0], Args: args}
}

// Activate resolves link and starts its helper. Popup actions are
// returned for the caller to show.
func (d *Dispatcher) Activate(link string, ctrlHeld bool) (Action, error) {
	a, err := d.Resolve(link, ctrlHeld)
	if err != nil {
		return a, err
	}
	if a.Popup {
		return a, nil
	}
	return a, d.launch(a)
}

// Run starts helper on target directly. An empty helper runs the
// platform opener.
func (d *Dispatcher) Run(helper, target string) (Action, error) {
	a := d.command(helper, DefaultOpenHelper, target)
	return a, d.launch(a)
}

func (d *Dispatcher) launch(a Action) error {
	if d.launcher == nil {
		return ErrNoHelper
	}
	if err := d.launcher.Launch(a.Command, a.Args...); err != nil {
		return fmt.Errorf("launch %s: %w", a.Command, err)
	}
	d.logger.Debug("link helper started", "cmd", a.Command, "target", a.Target)
	return nil
}
