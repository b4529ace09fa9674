// Package logging assembles structured slog loggers and formatting helpers used
// by the shim and vyshimctl.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so every line of one shim invocation
// carries the same invocation_id. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Console output goes to stderr: stdout belongs to the node script once the
// shim hands a node back through pass-through.
package logging
