package mouse

import "time"

// Default click detection thresholds.
const (
	DefaultClickTime     = 400 * time.Millisecond
	DefaultClickDistance = 1
)

// ClickType represents the type of click detected.
type ClickType uint8

const (
	// ClickSingle is a single click.
	ClickSingle ClickType = 1
	// ClickDouble is a double click.
	ClickDouble ClickType = 2
	// ClickTriple is a triple click.
	ClickTriple ClickType = 3
)

// String returns a string representation of the click type.
func (c ClickType) String() string {
	switch c {
	case ClickSingle:
		return "single"
	case ClickDouble:
		return "double"
	case ClickTriple:
		return "triple"
	default:
		return "unknown"
	}
}

// ClickTracker tracks press patterns for double/triple click detection.
type ClickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastPos    Position
	lastButton Button
	lastTime   time.Time
	lastCount  int
}

// NewClickTracker creates a click tracker. Non-positive thresholds fall
// back to the defaults.
func NewClickTracker(maxTime time.Duration, maxDistance int) *ClickTracker {
	if maxTime <= 0 {
		maxTime = DefaultClickTime
	}
	if maxDistance < 0 {
		maxDistance = DefaultClickDistance
	}
	return &ClickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// Record records a press and returns the click type.
// The count wraps back to single after a triple click.
// A zero timestamp means time.Now().
func (t *ClickTracker) Record(button Button, pos Position, timestamp time.Time) ClickType {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	if t.isPartOfSequence(button, pos, timestamp) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastPos = pos
	t.lastButton = button
	t.lastTime = timestamp

	return ClickType(t.lastCount)
}

func (t *ClickTracker) isPartOfSequence(button Button, pos Position, timestamp time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() || button != t.lastButton {
		return false
	}

	// Clock skew starts a new sequence.
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}

	return pos.Distance(t.lastPos) <= t.maxDistance
}

// Reset clears the click tracking state.
func (t *ClickTracker) Reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = Position{}
	t.lastButton = ButtonNone
}

// Last returns the last recorded click type, 0 when nothing was recorded.
func (t *ClickTracker) Last() ClickType {
	return ClickType(t.lastCount)
}
