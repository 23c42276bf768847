// Package selection tracks the user's text selection over a cell buffer
// and extracts the selected text.
//
// Endpoints are in buffer-row coordinates: row 0 is the top visible line
// of an unscrolled screen and negative rows address the scrollback, the
// same addressing cellbuf.Rows uses. A Model never holds the buffer lock
// between calls; every operation that reads cells does so inside a single
// Read scope.
//
// Registry arbitrates ownership of the PRIMARY and CLIPBOARD selections
// between widgets of one process.
package selection
