package vine

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration and freezing.
var (
	// ErrDuplicateLink indicates a link identity was registered twice.
	ErrDuplicateLink = errors.New("duplicate link")

	// ErrCrossGraphDependency indicates a dependency names a link that
	// belongs to a different graph.
	ErrCrossGraphDependency = errors.New("dependency belongs to a different graph")

	// ErrUnresolvedLink indicates a dependency names a link that was never
	// registered.
	ErrUnresolvedLink = errors.New("dependency link not registered")

	// ErrCycleDetected indicates a stage or machine graph contains a cycle.
	ErrCycleDetected = errors.New("graph contains a cycle")

	// ErrDefaultAlreadySet indicates SetDefaultMachine was called twice.
	ErrDefaultAlreadySet = errors.New("default machine already set")

	// ErrUnknownMachine indicates a machine name was never declared.
	ErrUnknownMachine = errors.New("machine not declared")

	// ErrUnknownStage indicates a stage name was never declared.
	ErrUnknownStage = errors.New("stage not declared")
)

// Sentinel errors for execution.
var (
	// ErrNoDefaultMachine indicates Run was called on a program with no
	// default machine designated.
	ErrNoDefaultMachine = errors.New("no default machine designated")

	// ErrAlreadyRunning indicates Run was called twice on one scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrTaskOrphaned indicates a task was still queued when the scheduler
	// shut down. Its promise completes with this error so Join cannot hang.
	ErrTaskOrphaned = errors.New("task orphaned at shutdown")
)

// LinkError wraps a registration error with the link and graph it concerns.
type LinkError struct {
	// Link is the link identity that failed to register or resolve.
	Link string
	// Graph names the containing graph ("stage x" or "machine y").
	Graph string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %q in %s: %v", e.Link, e.Graph, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LinkError) Unwrap() error {
	return e.Err
}

// FunctionError wraps an error returned by a graph function body.
// A function error marks the machine run faulted; the run drains cleanly
// and Run returns the collected FunctionErrors.
type FunctionError struct {
	// Machine is the machine that was running.
	Machine string
	// Stage is the stage the function belongs to.
	Stage string
	// Link is the link identity of the function node.
	Link string
	// Err is the underlying error from the function body.
	Err error
}

// Error implements the error interface.
func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s (stage %s, machine %s): %v", e.Link, e.Stage, e.Machine, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FunctionError) Unwrap() error {
	return e.Err
}

// TaskError wraps an error returned by an ad-hoc task body. The wrapped
// error is what the task's promise reports through Err and Join.
type TaskError struct {
	// Err is the underlying error from the task body.
	Err error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from a function or task body.
// It includes the stack trace for debugging.
type PanicError struct {
	// Link is the link identity of the panicking function, or "task" for
	// a task body.
	Link string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Link, e.Value)
}
