// Package metrics exposes widget statistics in the Prometheus text format.
//
// A Metrics value owns its own registry so several widgets, or tests,
// never collide on the global default registry. It satisfies the frame
// observer of the compositor and the lifecycle observer of the block
// manager, and counts mouse reports written back to the program.
package metrics
