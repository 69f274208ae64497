// Package telemetry provides the simulator's ambient observability: a
// structured logger, an OpenTelemetry tracing span around the simulation
// run, and Prometheus counters/gauges for fleet-level metrics.
package telemetry

import (
	"log/slog"
	"os"
)

// Logger is the structured logging interface used throughout the
// simulator (Info/Warn/Debug take a message and fields; Error also
// takes the causing error).
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)
}

// slogLogger adapts log/slog to the Logger interface.
type slogLogger struct {
	inner *slog.Logger
}

// NewLogger constructs a Logger writing structured JSON to stderr.
func NewLogger() Logger {
	return &slogLogger{inner: slog.New(slog.NewJSONHandler(os.Stderr, nil))}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }

func (l *slogLogger) Error(msg string, err error, args ...any) {
	l.inner.Error(msg, append([]any{"error", err}, args...)...)
}
