package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
	extra    []string
}

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithWatchLogger sets the logger reload failures go to.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLayers loads extra files over path on every reload, in order.
func WithLayers(paths ...string) WatchOption {
	return func(o *watchOptions) {
		o.extra = append(o.extra, paths...)
	}
}

// Watch reloads path whenever it changes and passes the result to fn. It
// watches the containing directory so editors that replace the file are
// seen. Files that fail to load are logged and skipped. Watch blocks
// until ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config), opts ...WatchOption) error {
	o := watchOptions{debounce: DefaultDebounce, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	reload := func() {
		cfg, err := Load(append([]string{abs}, o.extra...)...)
		if err != nil {
			o.logger.Warn("config reload failed", "path", abs, "err", err)
			return
		}
		o.logger.Info("config reloaded", "path", abs)
		fn(cfg)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if o.debounce == 0 {
				reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(o.debounce)
			} else {
				timer.Reset(o.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			reload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			o.logger.Warn("config watcher", "err", err)
		}
	}
}
