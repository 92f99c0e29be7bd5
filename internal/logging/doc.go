// Package logging assembles structured slog loggers and formatting helpers used
// across meetscribe.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can tag log lines
// with series names, archive identifiers, stages, and run IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
