package timer

import (
	"sync"
	"time"
)

// Slot holds at most one pending timer.
type Slot struct {
	sched Scheduler

	mu      sync.Mutex
	seq     uint64
	timer   Stopper
	pending bool
}

// NewSlot creates an empty slot whose timers run on s.
func NewSlot(s Scheduler) *Slot {
	return &Slot{sched: s}
}

// Arm cancels any pending timer and schedules fn after d.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armLocked(d, fn)
}

// Schedule arms the slot only when nothing is pending. It reports
// whether a new timer was set.
func (s *Slot) Schedule(d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return false
	}
	s.armLocked(d, fn)
	return true
}

func (s *Slot) armLocked(d time.Duration, fn func()) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.pending = true
	s.timer = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		if !s.pending || s.seq != seq {
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending timer, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	s.pending = false
}

// Pending reports whether a timer is armed.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
