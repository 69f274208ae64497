package eventlog

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/shortlink-org/dispatchsim/internal/telemetry"
)

// watermillLoggerAdapter bridges telemetry.Logger to Watermill's
// LoggerAdapter.
type watermillLoggerAdapter struct {
	log telemetry.Logger
}

// NewWatermillLogger wraps log for use as a watermill.LoggerAdapter.
func NewWatermillLogger(log telemetry.Logger) watermill.LoggerAdapter {
	return &watermillLoggerAdapter{log: log}
}

func (w *watermillLoggerAdapter) Error(msg string, err error, _ watermill.LogFields) {
	w.log.Error(fmt.Sprintf("watermill: %s", msg), err)
}

func (w *watermillLoggerAdapter) Info(msg string, _ watermill.LogFields) {
	w.log.Info(fmt.Sprintf("watermill: %s", msg))
}

func (w *watermillLoggerAdapter) Debug(msg string, _ watermill.LogFields) {
	w.log.Debug(fmt.Sprintf("watermill: %s", msg))
}

func (w *watermillLoggerAdapter) Trace(msg string, _ watermill.LogFields) {
	w.log.Debug(fmt.Sprintf("watermill: %s", msg))
}

func (w *watermillLoggerAdapter) With(_ watermill.LogFields) watermill.LoggerAdapter {
	return w
}
