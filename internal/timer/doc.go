// Package timer runs a widget's work on a single goroutine.
//
// A Loop executes posted functions one at a time, in order, and turns
// timer expirations into posted functions, so everything a widget does
// happens on the loop goroutine. A Slot holds at most one pending timer
// with cancel-and-replace semantics; a timer that fires after it was
// replaced or cancelled does nothing.
//
// Manual is a Scheduler driven by hand, for tests.
package timer
