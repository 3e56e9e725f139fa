// Package logging assembles structured slog loggers and formatting helpers
// used across redactor.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag lines with export run and request IDs. A
// no-op logger is provided for tests and for wiring code that cannot fail.
package logging
