// Package block implements embedded blocks: regions of terminal cells that
// are replaced by a media object (image, video, vector document) or by an
// interactive graphic.
//
// # Lifecycle
//
// The running program registers a block through the terminal command
// envelope (ESC } ... NUL), for example:
//
//	is#5;2;/tmp/a.png        stretch /tmp/a.png over 5x2 cells
//	it#8;4;https://x/y\n/tmp/y.jpg
//	ij#20;3;lib.lua\nslider\nchid\nvol
//
// It then prints the replacement character ('#' above) W×H times while
// block mode is on; the buffer binds those cells to the block. Every
// composition pass the Manager sees which blocks are visible:
//
//	m.BeginFrame()
//	m.Activate(id, x, y) // for each block cell found
//	m.EndFrame()         // destroy objects of blocks no longer seen
//
// A block owns at most one display object at a time. Objects are created
// lazily on first sight and destroyed as soon as a frame passes without
// the block being seen.
//
// # Interactive graphics
//
// Interactive blocks accept forward commands as a flat list of tokens
// (text, emit, drag, message, chid) and, once bound to a channel id and
// subscribed with qj+ID, report signals, drags and messages back to the
// program as ESC } kind;ID\n... NUL envelopes.
package block
