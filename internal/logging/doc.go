// Package logging assembles structured slog loggers used across subreel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so pipeline code tags failures with
// the same event_type/error_hint shape everywhere. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
