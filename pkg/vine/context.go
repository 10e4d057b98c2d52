package vine

import (
	"context"
	"log/slog"
)

// Context provides execution context to function and task bodies.
// It extends context.Context with scheduler services and metadata.
//
// Worker identity is only reachable through a Context, so it is impossible
// to ask for a worker id from outside a worker.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with run, node and
	// worker context. Never returns nil.
	Logger() *slog.Logger

	// IssueTask pushes an ad-hoc task onto the execution queue.
	// Behaves identically to Scheduler.IssueTask.
	IssueTask(fn Task, arg any) *Promise

	// SetNextMachine marks which machine to run after the current one
	// drains. Returns ErrUnknownMachine for an undeclared name.
	SetNextMachine(machine string) error

	// RequestShutdown ends the scheduler's run loop after the current
	// machine drains. Never mid-machine.
	RequestShutdown()

	// Metadata

	// RunID returns the unique identifier of the current machine run.
	// Empty inside a task body.
	RunID() string

	// Machine returns the machine being run. Empty inside a task body.
	Machine() string

	// Stage returns the stage of the executing function. Empty inside a
	// task body.
	Stage() string

	// Link returns the link identity of the executing function, or "task"
	// inside a task body.
	Link() string

	// WorkerID returns the executing worker's stable id in
	// [0, WorkerCount).
	WorkerID() int

	// WorkerCount returns the size of the worker pool.
	WorkerCount() int
}

// workerContext is the internal implementation of Context.
type workerContext struct {
	context.Context

	sched  *Scheduler
	logger *slog.Logger

	runID    string
	machine  string
	stage    string
	link     string
	workerID int
}

// Logger returns the enriched logger.
func (c *workerContext) Logger() *slog.Logger {
	return c.logger
}

// IssueTask delegates to the scheduler.
func (c *workerContext) IssueTask(fn Task, arg any) *Promise {
	return c.sched.IssueTask(fn, arg)
}

// SetNextMachine delegates to the scheduler.
func (c *workerContext) SetNextMachine(machine string) error {
	return c.sched.SetNextMachine(machine)
}

// RequestShutdown delegates to the scheduler.
func (c *workerContext) RequestShutdown() {
	c.sched.RequestShutdown()
}

// RunID returns the machine-run identifier.
func (c *workerContext) RunID() string {
	return c.runID
}

// Machine returns the running machine's name.
func (c *workerContext) Machine() string {
	return c.machine
}

// Stage returns the executing function's stage.
func (c *workerContext) Stage() string {
	return c.stage
}

// Link returns the executing function's link identity.
func (c *workerContext) Link() string {
	return c.link
}

// WorkerID returns the executing worker's id.
func (c *workerContext) WorkerID() int {
	return c.workerID
}

// WorkerCount returns the pool size.
func (c *workerContext) WorkerCount() int {
	return c.sched.WorkerCount()
}
