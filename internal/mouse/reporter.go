package mouse

// Reporter carries the per-widget state of mouse reporting: the button
// that started the current press and the last cell a pointer event was
// seen in.
//
// Reporter is not safe for concurrent use; it belongs to the goroutine
// that delivers input events.
type Reporter struct {
	button  Button
	last    Position
	hasLast bool
}

// NewReporter creates a reporter with no button held.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report encodes ev for the negotiated protocol state.
//
// For KindMove the event's Button and Changed fields are filled in from the
// reporter state; callers only supply the kind, cell and modifiers.
func (r *Reporter) Report(ev Event, st State) ([]byte, bool) {
	pos := Position{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case KindDown:
		r.track(pos)
		if st.Mode == ModeOff {
			return nil, false
		}
		if r.button == ButtonNone {
			r.button = ev.Button
		}
	case KindUp:
		r.track(pos)
		if st.Mode == ModeOff || st.Mode == ModeX10 {
			return nil, false
		}
		if r.button == ev.Button {
			r.button = ButtonNone
		}
	case KindMove:
		ev.Changed = r.track(pos)
		ev.Button = r.button
	}
	return Encode(ev, st.Mode, st.Ext)
}

// Pressed returns the button that started the current press.
func (r *Reporter) Pressed() Button {
	return r.button
}

// Reset forgets the held button and the last cell.
func (r *Reporter) Reset() {
	r.button = ButtonNone
	r.hasLast = false
	r.last = Position{}
}

// track records pos and reports whether it differs from the last cell.
func (r *Reporter) track(pos Position) bool {
	changed := !r.hasLast || !r.last.Equal(pos)
	r.last = pos
	r.hasLast = true
	return changed
}
