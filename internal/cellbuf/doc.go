// Package cellbuf provides the terminal cell buffer: rows of cells with a
// scrollback, fed by a small VT parser, plus the block registry and the
// notifications the widget subscribes to.
//
// # Reading
//
// All multi-row reads go through Read, which holds the buffer frozen for
// the duration of the callback:
//
//	screen.Read(func(rows cellbuf.Rows) {
//	    cols, lines := rows.Size()
//	    for y := 0; y < lines; y++ {
//	        cells := rows.Row(y - scroll)
//	        ...
//	    }
//	})
//
// Row(y) addresses screen lines for y >= 0 and scrollback for y < 0
// (-1 is the most recent scrollback line). Rows may be shorter than the
// screen width.
//
// # Feeding
//
// Feed runs program output through the parser. Notifications (change,
// scroll, title, bell, terminal commands, ...) are delivered after the
// buffer lock is released, so handlers may read the buffer. Terminal
// commands are delivered as soon as their envelope ends, before any
// following output is parsed.
package cellbuf
