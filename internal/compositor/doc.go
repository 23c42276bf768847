// Package compositor turns the terminal cell buffer into a display grid.
//
// Compose walks every visible row inside one buffer read scope, updates
// the display grid and reports one dirty span per changed row. Cells that
// belong to an embedded block are drawn transparent and the block is
// activated at its resolved placement; blocks not seen during a pass are
// deactivated when it ends.
//
// Overlay computes where the cursor and selection overlays go for the
// composed frame.
package compositor
