// Package logging assembles structured slog loggers used across dpdlookup.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so a sync pass can tag every log line
// with its sync ID and producer. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
