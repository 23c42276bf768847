// Package link finds links in buffer text and opens them.
//
// Find reads the cells around a hovered cell and returns the URL, path or
// email address printed there, following rows that wrapped. Dispatcher
// turns an activated link into an Action: an inline popup or a helper
// command, chosen by where the target lives and what media type it has.
// Helper commands are started by a Launcher and never waited on by the
// caller.
package link
