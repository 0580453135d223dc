// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop slogger.go

package netcfg

// SLogger abstracts the [*slog.Logger] behavior used by the pools and
// session layers built on top of this package.
//
// This package uses two log levels:
//   - Info for lifecycle events (acquire, release, reap, pool stop)
//   - Debug for per-operation events (query start/done, watchdog ticks)
//
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Output is an alias for [SLogger], used where the pools describe their
// dependency as a generic event sink rather than a leveled logger.
type Output = SLogger

// DefaultSLogger returns the default [SLogger] to use.
//
// The default is a no-op logger that discards all output. This follows the
// library convention of not writing to stdout/stderr unless explicitly configured.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

// discardSLogger is a no-op [SLogger] that discards all log messages.
type discardSLogger struct{}

var _ SLogger = discardSLogger{}

// Debug implements [SLogger].
func (discardSLogger) Debug(msg string, args ...any) {
	// nothing
}

// Info implements [SLogger].
func (discardSLogger) Info(msg string, args ...any) {
	// nothing
}
