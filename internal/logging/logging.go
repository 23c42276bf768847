// Package logging builds the process *slog.Logger from settings.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseLevel parses a level name. Unknown names give info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures New.
type Options struct {
	Level  string
	Format Format
	// File, when set, receives the log; it is created or appended to.
	File string
	// Writer receives the log as well as File. Nil with no File
	// discards everything.
	Writer io.Writer
}

// Logger is a logger whose level can change after creation.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(s string) {
	l.level.Set(ParseLevel(s))
}

// Level returns the minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New creates a logger from opts.
func New(opts Options) (*Logger, error) {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(opts.Level))
	ho := &slog.HandlerOptions{Level: lv}

	var (
		handlers []slog.Handler
		closer   io.Closer
	)
	if opts.Writer != nil {
		handlers = append(handlers, newHandler(opts.Writer, opts.Format, ho))
	}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closer = f
		handlers = append(handlers, newHandler(f, opts.Format, ho))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})
	case 1:
		h = handlers[0]
	default:
		h = fanout(handlers)
	}
	return &Logger{Logger: slog.New(h), level: lv, closer: closer}, nil
}

func newHandler(w io.Writer, f Format, ho *slog.HandlerOptions) slog.Handler {
	if f == FormatJSON {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

// fanout sends each record to every handler enabled for its level.
type fanout []slog.Handler

func (hs fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (hs fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range hs {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (hs fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(hs))
	for i, h := range hs {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (hs fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(hs))
	for i, h := range hs {
		out[i] = h.WithGroup(name)
	}
	return out
}
