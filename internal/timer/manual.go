package timer

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler that only runs work when told to. Time starts at
// zero and moves with Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	jobs   []func()
	timers []*manualTimer
	seq    int
}

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

// Stop implements Stopper.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// NewManual creates a manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Post queues fn until the next Drain.
func (m *Manual) Post(fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, fn)
	return true
}

// AfterFunc queues fn once Advance has moved past d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Drain runs posted functions, including ones they post, until none
// are left.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.jobs) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.jobs[0]
		m.jobs = m.jobs[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves time forward by d, posting every timer that comes due in
// deadline order, and drains.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due, rest []*manualTimer
	for _, t := range m.timers {
		switch {
		case t.stopped:
		case t.at <= m.now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	m.timers = rest
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.stopped = true
		m.jobs = append(m.jobs, t.fn)
	}
	m.mu.Unlock()
	m.Drain()
}

// Pending returns the number of timers not yet fired or stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Now returns the manual clock.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
