// Package journal provides an append-only record of machine runs and
// function executions for post-run inspection.
//
// The scheduler never reads the journal back; it is an observability sink,
// not execution state.
package journal

import (
	"errors"
	"time"
)

// Kind classifies a journal record.
type Kind string

// Record kinds.
const (
	// KindRunStart marks the start of a machine run.
	KindRunStart Kind = "run_start"

	// KindRunComplete marks a successful machine run.
	KindRunComplete Kind = "run_complete"

	// KindRunFaulted marks a machine run that drained with faults.
	KindRunFaulted Kind = "run_faulted"

	// KindFunction records one graph function execution.
	KindFunction Kind = "function"
)

// Record is one journal entry.
type Record struct {
	RunID     string
	Machine   string
	Stage     string // empty for run-level records
	Link      string // empty for run-level records
	Kind      Kind
	Error     string // empty on success
	Timestamp time.Time
	Duration  time.Duration
}

// Store persists journal records.
// Implementations must be safe for concurrent use: every worker appends.
type Store interface {
	// Append stores a record. Records of one run are ordered by insertion.
	Append(rec Record) error

	// List returns all records for a run, in insertion order.
	// Returns an empty slice (not an error) if the run has no records.
	List(runID string) ([]Record, error)

	// DeleteRun removes all records for a run.
	// Returns nil if the run has no records.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
