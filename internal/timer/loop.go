package timer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the number of posted functions a loop buffers.
const DefaultQueueSize = 256

// Stopper cancels a scheduled function.
type Stopper interface {
	// Stop prevents the function from running and reports whether it
	// was still pending.
	Stop() bool
}

// Scheduler runs functions on a single goroutine.
type Scheduler interface {
	// Post queues fn. It reports false when the scheduler is stopped.
	Post(fn func()) bool
	// AfterFunc queues fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Stopper
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the size of the posted function buffer.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.size = n
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loop is a Scheduler backed by one goroutine running Run.
type Loop struct {
	size    int
	logger  *slog.Logger
	jobs    chan func()
	done    chan struct{}
	stop    sync.Once
	running atomic.Bool
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		size:   DefaultQueueSize,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.jobs = make(chan func(), l.size)
	return l
}

// Run executes posted functions until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.jobs:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop job panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn. It blocks while the queue is full and reports false
// once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.jobs <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc posts fn once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// Stop makes Run return and Post fail. It is safe to call more than
// once.
func (l *Loop) Stop() {
	l.stop.Do(func() {
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
