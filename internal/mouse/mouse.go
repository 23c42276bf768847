package mouse

import "strings"

// Button represents a mouse button, numbered the way the protocol counts them.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonBack is the back navigation button.
	ButtonBack
	// ButtonForward is the forward navigation button.
	ButtonForward
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonBack:
		return "back"
	case ButtonForward:
		return "forward"
	default:
		return "none"
	}
}

// Modifier is a set of keyboard modifiers held during a pointer event.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0
	// ModShift is the Shift key.
	ModShift Modifier = 1 << iota
	// ModAlt is the Alt (Meta) key.
	ModAlt
	// ModCtrl is the Control key.
	ModCtrl
)

// Has returns true if m contains all modifiers in other.
func (m Modifier) Has(other Modifier) bool {
	return m&other == other && other != 0
}

// Any returns true if any modifier is held.
func (m Modifier) Any() bool {
	return m != ModNone
}

// String returns a string representation of the modifier set.
func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	return strings.Join(parts, "+")
}

// bits returns the protocol modifier bits.
func (m Modifier) bits() int {
	v := 0
	if m.Has(ModShift) {
		v |= 4
	}
	if m.Has(ModAlt) {
		v |= 8
	}
	if m.Has(ModCtrl) {
		v |= 16
	}
	return v
}

// Kind is the kind of pointer event.
type Kind uint8

const (
	// KindDown is a button press.
	KindDown Kind = iota
	// KindUp is a button release.
	KindUp
	// KindMove is pointer motion.
	KindMove
	// KindWheelUp is one wheel notch away from the user.
	KindWheelUp
	// KindWheelDown is one wheel notch toward the user.
	KindWheelDown
)

// String returns a string representation of the event kind.
func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindUp:
		return "up"
	case KindMove:
		return "move"
	case KindWheelUp:
		return "wheel-up"
	case KindWheelDown:
		return "wheel-down"
	default:
		return "unknown"
	}
}

// Mode is the negotiated mouse reporting mode.
type Mode uint8

const (
	// ModeOff disables reporting.
	ModeOff Mode = iota
	// ModeX10 reports presses only.
	ModeX10
	// ModeNormal reports presses and releases.
	ModeNormal
	// ModeNormalButtonMove also reports motion while a button is held.
	ModeNormalButtonMove
	// ModeAnyMove also reports all motion.
	ModeAnyMove
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeX10:
		return "x10"
	case ModeNormal:
		return "normal"
	case ModeNormalButtonMove:
		return "button-move"
	case ModeAnyMove:
		return "any-move"
	default:
		return "unknown"
	}
}

// Ext is the negotiated coordinate encoding.
type Ext uint8

const (
	// ExtNone is the legacy 7-bit encoding.
	ExtNone Ext = iota
	// ExtUTF8 encodes large coordinates as two bytes.
	ExtUTF8
	// ExtSGR is the textual SGR encoding.
	ExtSGR
	// ExtURXVT is the textual urxvt encoding.
	ExtURXVT
)

// String returns a string representation of the extension.
func (e Ext) String() string {
	switch e {
	case ExtNone:
		return "none"
	case ExtUTF8:
		return "utf8"
	case ExtSGR:
		return "sgr"
	case ExtURXVT:
		return "urxvt"
	default:
		return "unknown"
	}
}

// Position represents a cell coordinate.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Distance returns the Manhattan distance (|dx| + |dy|) between two positions.
func (p Position) Distance(other Position) int {
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Event is a pointer event in 0-based cell coordinates.
type Event struct {
	Kind Kind

	// Button is the pressed or released button for KindDown and KindUp,
	// and the held button (if any) for KindMove.
	Button Button

	// X and Y are the 0-based cell column and row.
	X int
	Y int

	Modifiers Modifier

	// Changed reports whether a KindMove event entered a new cell.
	Changed bool
}

// State is the protocol state negotiated by the running program.
type State struct {
	Mode Mode
	Ext  Ext
}
