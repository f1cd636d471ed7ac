// Package logging provides structured logging for capolicy built on
// log/slog.
//
// Setup installs a process-wide default logger configured from the
// telemetry section of the configuration. Components obtain scoped loggers
// with slog.Default().With("component", name) so every line carries its
// origin.
package logging
