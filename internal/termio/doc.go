// Package termio is the terminal widget: it glues a cell buffer to the
// compositor, the embedded block manager, the selection model, mouse
// reporting and link activation, and turns toolkit input into bytes for
// the running program and notifications for the embedding application.
//
// # Locking
//
// A Widget serializes every entry point on one mutex. Buffer
// notifications arrive on the goroutine feeding the buffer, input on the
// toolkit goroutine and timers on the scheduler goroutine; all of them
// run one at a time. Terminal commands are applied before the buffer
// parses the output that follows them, so a block registration is always
// known when its replacement characters are printed.
//
// Frames and notifications are delivered after the lock is released, so
// handlers may call back into the widget. Frames carry a sequence number;
// a painter that sees an older frame than the last one it painted should
// drop it.
//
// # Timers
//
// Deferred work runs through cancel-and-replace slots on a
// timer.Scheduler:
//
//	render     RenderInterval  coalesces buffer changes into one frame
//	mouseover  HoverDelay      finds the link under the pointer
//	link       LinkDelay       activates a clicked link unless the click selected
//	resize     ResizeDelay     applies the last requested grid size
package termio
