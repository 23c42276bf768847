package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRunsPostedInOrder(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Call(ctx, func() {}); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want 0..4", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("ran %d jobs, want 5", len(got))
	}

	l.Stop()
	if err := <-errc; err != nil {
		t.Errorf("Run() = %v, want nil after Stop", err)
	}
	if l.Post(func() {}) {
		t.Error("Post() after Stop = true, want false")
	}
	if err := l.Call(ctx, func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Call() after Stop = %v, want ErrStopped", err)
	}
}

func TestLoopContextCancel(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	select {
	case <-l.Done():
	default:
		t.Error("Done() not closed after cancel")
	}
}

func TestLoopRunTwice(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	if err := l.Call(ctx, func() {}); err != nil {
		t.Fatal(err)
	}
	if err := l.Run(ctx); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run() = %v, want ErrRunning", err)
	}
	l.Stop()
}

func TestLoopSurvivesPanic(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	l.Post(func() { panic("boom") })

	ran := false
	if err := l.Call(ctx, func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("job after a panic did not run")
	}
	l.Stop()
}

func TestLoopAfterFunc(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-ctx.Done():
		t.Fatal("timer never fired")
	}
	l.Stop()
}

func TestSlotArmReplaces(t *testing.T) {
	m := NewManual()
	s := NewSlot(m)
	var got []string
	s.Arm(50*time.Millisecond, func() { got = append(got, "first") })
	s.Arm(50*time.Millisecond, func() { got = append(got, "second") })

	m.Advance(49 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}
	m.Advance(time.Millisecond)
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("fired %v, want [second]", got)
	}
	if s.Pending() {
		t.Error("Pending() = true after firing")
	}
}

func TestSlotCancel(t *testing.T) {
	m := NewManual()
	s := NewSlot(m)
	var n int
	s.Arm(time.Second, func() { n++ })
	s.Cancel()
	m.Advance(2 * time.Second)
	if n != 0 {
		t.Errorf("cancelled timer fired %d times", n)
	}
	if s.Pending() {
		t.Error("Pending() = true after Cancel")
	}
}

func TestSlotScheduleCoalesces(t *testing.T) {
	m := NewManual()
	s := NewSlot(m)
	var n int
	if !s.Schedule(time.Second/60, func() { n++ }) {
		t.Fatal("first Schedule() = false")
	}
	if s.Schedule(time.Second/60, func() { n += 10 }) {
		t.Error("Schedule() while pending = true")
	}
	m.Advance(time.Second / 60)
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
	if !s.Schedule(time.Second/60, func() { n++ }) {
		t.Error("Schedule() after firing = false")
	}
}

func TestSlotStaleFireIgnored(t *testing.T) {
	m := NewManual()
	s := NewSlot(m)
	var fired atomic.Int32
	s.Arm(time.Second, func() { fired.Add(1) })
	// A fire already queued when the slot is re-armed must not run.
	m.mu.Lock()
	stale := m.timers[0].fn
	m.mu.Unlock()
	s.Arm(time.Second, func() { fired.Add(10) })
	stale()
	if fired.Load() != 0 {
		t.Errorf("stale fire ran: %d", fired.Load())
	}
	m.Advance(time.Second)
	if fired.Load() != 10 {
		t.Errorf("fired = %d, want 10", fired.Load())
	}
}

func TestManualOrdering(t *testing.T) {
	m := NewManual()
	var got []int
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, 3) })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, 1) })
	m.AfterFunc(20*time.Millisecond, func() { got = append(got, 2) })
	st := m.AfterFunc(15*time.Millisecond, func() { got = append(got, 99) })
	if !st.Stop() {
		t.Error("Stop() on pending timer = false")
	}
	if m.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", m.Pending())
	}
	m.Advance(time.Second)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if m.Now() != time.Second {
		t.Errorf("Now() = %v, want 1s", m.Now())
	}
}
