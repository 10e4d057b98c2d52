// Package observability provides production-grade observability features
// for vine: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogRunStart logs the start of a machine run.
func LogRunStart(logger *slog.Logger, runID, machine string) {
	if logger == nil {
		return
	}
	logger.Info("machine run starting",
		slog.String("run_id", runID),
		slog.String("machine", machine),
	)
}

// LogRunComplete logs successful machine run completion.
func LogRunComplete(logger *slog.Logger, runID, machine string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("machine run completed",
		slog.String("run_id", runID),
		slog.String("machine", machine),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRunError logs a faulted machine run.
func LogRunError(logger *slog.Logger, runID, machine string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("machine run faulted",
		slog.String("run_id", runID),
		slog.String("machine", machine),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFunctionStart logs function execution start.
// The logger is expected to already carry run, node and worker fields.
func LogFunctionStart(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Debug("function starting")
}

// LogFunctionComplete logs successful function completion.
func LogFunctionComplete(logger *slog.Logger, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("function completed",
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFunctionError logs function execution failure.
func LogFunctionError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("function failed",
		slog.String("error", err.Error()),
	)
}

// LogTaskComplete logs successful task completion.
func LogTaskComplete(logger *slog.Logger, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("task completed",
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTaskError logs task execution failure.
func LogTaskError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("task failed",
		slog.String("error", err.Error()),
	)
}

// LogJournalError logs a journal append failure (non-fatal).
func LogJournalError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal append failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
