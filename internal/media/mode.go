package media

import "strings"

// Mode describes how a media object is laid out in its block, plus
// lifecycle flags for the object's playback state.
type Mode uint16

const (
	// ModeFill fills the block as a background.
	ModeFill Mode = iota
	// ModeCenter centers the media at its natural aspect (pop-up style).
	ModeCenter
	// ModeStretch stretches the media over the block.
	ModeStretch
	// ModeThumb shows a clickable thumbnail.
	ModeThumb

	// ModeLayoutMask selects the layout part of a Mode.
	ModeLayoutMask Mode = 0x7f
)

const (
	// ModeSave asks the object to save its playback state when destroyed.
	ModeSave Mode = 0x80
	// ModeRecover asks the object to restore previously saved state.
	ModeRecover Mode = 0x100
)

// Layout returns the layout part of m.
func (m Mode) Layout() Mode {
	return m & ModeLayoutMask
}

// Has reports whether all flags in f are set.
func (m Mode) Has(f Mode) bool {
	return m&f == f
}

// String returns a string representation of the mode.
func (m Mode) String() string {
	var b strings.Builder
	switch m.Layout() {
	case ModeFill:
		b.WriteString("fill")
	case ModeCenter:
		b.WriteString("center")
	case ModeStretch:
		b.WriteString("stretch")
	case ModeThumb:
		b.WriteString("thumb")
	default:
		b.WriteString("unknown")
	}
	if m.Has(ModeRecover) {
		b.WriteString("+recover")
	}
	if m.Has(ModeSave) {
		b.WriteString("+save")
	}
	return b.String()
}
