package vine

import (
	"log/slog"

	"github.com/TakiKacper/vine/pkg/vine/config"
	"github.com/TakiKacper/vine/pkg/vine/journal"
	"github.com/TakiKacper/vine/pkg/vine/observability"
)

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithMaxWorkers caps the worker pool size. The pool is
// min(runtime.NumCPU(), n). Values below 1 leave the cap unlimited.
func WithMaxWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxWorkers = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
// The scheduler enriches it with run_id, machine, stage, link and
// worker_id fields around function bodies.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables OpenTelemetry metrics for machine runs, function
// executions and task executions. Disabled by default (no-op recorder).
//
// Configure the global OTel meter provider before Run:
//
//	otel.SetMeterProvider(yourProvider)
func WithMetrics(enabled bool) Option {
	return func(s *Scheduler) {
		if enabled {
			s.metrics = observability.NewMetricsRecorder()
		} else {
			s.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for machine runs and function
// executions. Disabled by default.
func WithTracing(enabled bool) Option {
	return func(s *Scheduler) {
		s.tracing = enabled
		if enabled {
			s.spans = observability.NewSpanManager()
		} else {
			s.spans = observability.NoopSpanManager{}
		}
	}
}

// WithJournal attaches a run journal. Every machine run and function
// execution is appended as a record. Journal failures are logged and never
// affect execution.
func WithJournal(store journal.Store) Option {
	return func(s *Scheduler) {
		s.journal = store
	}
}

// WithConfig applies scheduler settings from a loaded configuration.
//
// Recognised keys:
//   - max_workers (int): worker pool cap, as WithMaxWorkers
//   - metrics (bool): as WithMetrics
//   - tracing (bool): as WithTracing
//   - journal (string): path of a SQLite run journal, as WithJournal
//
// A journal path that cannot be opened is logged and skipped; it never
// fails scheduler construction.
func WithConfig(cfg config.Config) Option {
	return func(s *Scheduler) {
		WithMaxWorkers(cfg.Int("max_workers", 0))(s)
		WithMetrics(cfg.Bool("metrics", false))(s)
		WithTracing(cfg.Bool("tracing", false))(s)
		if path := cfg.String("journal", ""); path != "" {
			store, err := journal.NewSQLiteStore(path)
			if err != nil {
				s.logger.Warn("config journal path unusable, journaling disabled",
					slog.String("path", path),
					slog.String("error", err.Error()))
				return
			}
			WithJournal(store)(s)
		}
	}
}
