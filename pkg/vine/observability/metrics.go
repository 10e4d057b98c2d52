package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records vine scheduler metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordFunctionExecution records a graph function execution with its
	// duration and error status.
	RecordFunctionExecution(ctx context.Context, link string, duration time.Duration, err error)

	// RecordMachineRun records a machine run completion.
	RecordMachineRun(ctx context.Context, machine string, success bool, duration time.Duration)

	// RecordTaskExecution records an ad-hoc task execution.
	RecordTaskExecution(ctx context.Context, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	funcExecutions metric.Int64Counter
	funcLatency    metric.Float64Histogram
	funcErrors     metric.Int64Counter
	machineRuns    metric.Int64Counter
	machineLatency metric.Float64Histogram
	taskExecutions metric.Int64Counter
	taskLatency    metric.Float64Histogram
	taskErrors     metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("vine")

	funcExecutions, err := meter.Int64Counter("vine.function.executions",
		metric.WithDescription("Number of graph function executions"),
	)
	if err != nil {
		return nil, err
	}

	funcLatency, err := meter.Float64Histogram("vine.function.latency_ms",
		metric.WithDescription("Graph function execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	funcErrors, err := meter.Int64Counter("vine.function.errors",
		metric.WithDescription("Number of graph function errors"),
	)
	if err != nil {
		return nil, err
	}

	machineRuns, err := meter.Int64Counter("vine.machine.runs",
		metric.WithDescription("Number of machine runs"),
	)
	if err != nil {
		return nil, err
	}

	machineLatency, err := meter.Float64Histogram("vine.machine.latency_ms",
		metric.WithDescription("Machine run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	taskExecutions, err := meter.Int64Counter("vine.task.executions",
		metric.WithDescription("Number of ad-hoc task executions"),
	)
	if err != nil {
		return nil, err
	}

	taskLatency, err := meter.Float64Histogram("vine.task.latency_ms",
		metric.WithDescription("Ad-hoc task execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	taskErrors, err := meter.Int64Counter("vine.task.errors",
		metric.WithDescription("Number of ad-hoc task errors"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		funcExecutions: funcExecutions,
		funcLatency:    funcLatency,
		funcErrors:     funcErrors,
		machineRuns:    machineRuns,
		machineLatency: machineLatency,
		taskExecutions: taskExecutions,
		taskLatency:    taskLatency,
		taskErrors:     taskErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordFunctionExecution records a graph function execution.
func (m *otelMetrics) RecordFunctionExecution(ctx context.Context, link string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("link", link),
	}

	m.funcExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.funcLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.funcErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordMachineRun records a machine run.
func (m *otelMetrics) RecordMachineRun(ctx context.Context, machine string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("machine", machine),
		attribute.Bool("success", success),
	}
	m.machineRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.machineLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordTaskExecution records an ad-hoc task execution.
func (m *otelMetrics) RecordTaskExecution(ctx context.Context, duration time.Duration, err error) {
	m.taskExecutions.Add(ctx, 1)
	m.taskLatency.Record(ctx, float64(duration.Milliseconds()))
	if err != nil {
		m.taskErrors.Add(ctx, 1)
	}
}
