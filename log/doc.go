// Package log wraps log/slog with a Trace level, text and JSON output
// formats, and functional-option configuration.
//
// The zero value of [Logger] is a valid no-op logger, which lets library
// code log unconditionally without nil checks; callers opt in by injecting
// a logger built with [Make].
package log
