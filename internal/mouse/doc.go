// Package mouse encodes pointer events into the terminal mouse reporting
// protocol and tracks the little state the protocol needs.
//
// # Protocol State
//
// The running program negotiates a reporting Mode (what to report) and an
// Ext (how to encode it):
//
//	Off               nothing is reported
//	X10               button presses only
//	Normal            presses and releases
//	NormalButtonMove  plus motion while a button is held
//	AnyMove           plus all motion
//
// # Encoding
//
// Encode is a pure function of the event, the mode and the extension:
//
//	seq, handled := mouse.Encode(ev, mouse.ModeNormal, mouse.ExtSGR)
//	if len(seq) > 0 {
//	    sink.Write(seq)
//	}
//
// handled reports whether the event was consumed by mouse reporting; a
// consumed event may still produce no bytes (an unchanged motion cell or a
// legacy coordinate that does not fit in a byte).
//
// # Reporter
//
// Reporter wraps Encode with the stateful parts of reporting: the first
// pressed button, which motion reports carry, and the last pointer cell,
// which suppresses motion reports within one cell.
//
// # Click Detection
//
// ClickTracker classifies presses into single, double and triple clicks
// based on timing and distance thresholds.
package mouse
