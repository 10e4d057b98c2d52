package vine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/TakiKacper/vine/pkg/vine/journal"
	"github.com/TakiKacper/vine/pkg/vine/observability"
)

// Scheduler runs a Program's machines on a fixed worker pool.
//
// Create one with New, then call Run exactly once. SetNextMachine,
// RequestShutdown and IssueTask are safe to call from any goroutine at
// any time, including from inside function and task bodies via Context.
type Scheduler struct {
	prog *Program

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	tracing bool
	journal journal.Store

	workers    int
	maxWorkers int

	// queue state: both queues, all readiness counters of the active run,
	// and the busy-worker count are mutually consistent under mu.
	mu         sync.Mutex
	workCond   *sync.Cond // wake any worker
	drainCond  *sync.Cond // machine has drained
	funcQueue  []funcItem
	taskQueue  []taskItem
	busy       int // workers inside a function body of the active machine
	run        *runState
	terminate  bool // workers must exit
	terminated bool // pool has exited; queued tasks can never run

	// machine-control state
	stateMu  sync.Mutex
	current  string
	queued   string
	shutdown bool
	started  bool

	baseCtx context.Context
}

// New creates a scheduler for a frozen program.
//
// Pool size is min(runtime.NumCPU(), cap), where cap is set by
// WithMaxWorkers and defaults to unlimited. The pool itself starts inside
// Run and is joined before Run returns.
func New(prog *Program, opts ...Option) *Scheduler {
	s := &Scheduler{
		prog:    prog,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		queued:  prog.DefaultMachine(),
	}
	s.workCond = sync.NewCond(&s.mu)
	s.drainCond = sync.NewCond(&s.mu)

	for _, opt := range opts {
		opt(s)
	}

	s.workers = runtime.NumCPU()
	if s.maxWorkers > 0 && s.workers > s.maxWorkers {
		s.workers = s.maxWorkers
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// WorkerCount returns the size of the worker pool.
func (s *Scheduler) WorkerCount() int {
	return s.workers
}

// CurrentMachine returns the machine most recently promoted to run, or ""
// before the first promotion.
func (s *Scheduler) CurrentMachine() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.current
}

// SetNextMachine marks which machine to run after the current one drains.
// Setting the machine that is already running makes it run again.
// Returns ErrUnknownMachine for an undeclared name.
func (s *Scheduler) SetNextMachine(machine string) error {
	if !s.prog.HasMachine(machine) {
		return ErrUnknownMachine
	}
	s.stateMu.Lock()
	s.queued = machine
	s.stateMu.Unlock()
	return nil
}

// RequestShutdown ends the run loop after the current machine drains.
// In-flight work completes; it never interrupts a machine mid-run.
func (s *Scheduler) RequestShutdown() {
	s.stateMu.Lock()
	s.shutdown = true
	s.stateMu.Unlock()
}

// IssueTask pushes an ad-hoc task onto the execution queue and returns a
// promise for its completion. Tasks run opportunistically: function work
// always has priority, so tasks never starve machine progress.
//
// Safe to call before Run starts (the task waits for the pool) and from
// inside function or task bodies. After shutdown the returned promise
// completes immediately with ErrTaskOrphaned.
func (s *Scheduler) IssueTask(fn Task, arg any) *Promise {
	if fn == nil {
		panic("vine: task function cannot be nil")
	}
	p := newPromise()

	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		p.state.complete(ErrTaskOrphaned)
		return p
	}
	s.taskQueue = append(s.taskQueue, taskItem{promise: p, fn: fn, arg: arg})
	s.workCond.Signal()
	s.mu.Unlock()
	return p
}

// Run executes machines until shutdown is requested or ctx is cancelled,
// starting from the default machine. Both are effective at machine
// boundaries: the active machine always drains first.
//
// Returns ErrNoDefaultMachine if the program designates no default, and
// the collected function errors if a machine run faulted. On return the
// worker pool has exited and any still-queued tasks have been orphaned.
func (s *Scheduler) Run(ctx context.Context) error {
	s.stateMu.Lock()
	if s.started {
		s.stateMu.Unlock()
		return ErrAlreadyRunning
	}
	s.started = true
	queued := s.queued
	s.stateMu.Unlock()

	if queued == "" {
		return ErrNoDefaultMachine
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.baseCtx = ctx

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.workerLoop(id)
		}(i)
	}
	s.logger.Debug("worker pool started", slog.Int("workers", s.workers))

	var runErrs []error
	for {
		s.stateMu.Lock()
		stop := s.shutdown
		name := s.queued
		if !stop {
			s.current = name
		}
		s.stateMu.Unlock()
		if stop || ctx.Err() != nil {
			break
		}

		faults, err := s.runMachine(ctx, name)
		if err != nil {
			runErrs = append(runErrs, err)
			break
		}
		if len(faults) > 0 {
			runErrs = append(runErrs, faults...)
			break
		}
	}

	s.stopPool(&wg)
	return errors.Join(runErrs...)
}

// runMachine executes one full machine run: seed, wait for quiescence,
// collect faults. Returns the run's faults, or an error if the run could
// not start.
func (s *Scheduler) runMachine(ctx context.Context, name string) ([]error, error) {
	runID := uuid.New().String()
	rs, err := newRunState(s.prog, name, runID)
	if err != nil {
		return nil, err
	}

	observability.LogRunStart(s.logger, runID, name)
	spanCtx := ctx
	var runSpan trace.Span
	if s.tracing {
		spanCtx, runSpan = s.spans.StartRunSpan(ctx, name, runID)
	}
	rs.spanCtx = spanCtx
	s.appendJournal(journal.Record{
		RunID: runID, Machine: name, Kind: journal.KindRunStart, Timestamp: time.Now().UTC(),
	})
	start := time.Now()

	s.mu.Lock()
	s.run = rs
	for _, sn := range rs.machine.independents {
		s.activateStage(rs, sn)
	}
	s.workCond.Broadcast()
	for !(len(s.funcQueue) == 0 && s.busy == 0) {
		s.drainCond.Wait()
	}
	faults := rs.faults
	s.run = nil
	s.mu.Unlock()

	duration := time.Since(start)
	s.metrics.RecordMachineRun(ctx, name, len(faults) == 0, duration)
	if s.tracing {
		s.spans.EndSpanWithError(runSpan, errors.Join(faults...))
	}
	kind := journal.KindRunComplete
	if len(faults) > 0 {
		kind = journal.KindRunFaulted
	}
	s.appendJournal(journal.Record{
		RunID: runID, Machine: name, Kind: kind,
		Timestamp: time.Now().UTC(), Duration: duration,
		Error: errText(errors.Join(faults...)),
	})
	if len(faults) > 0 {
		observability.LogRunError(s.logger, runID, name, errors.Join(faults...), float64(duration.Milliseconds()))
	} else {
		observability.LogRunComplete(s.logger, runID, name, float64(duration.Milliseconds()))
	}
	return faults, nil
}

// activateStage pushes a ready stage's independent function nodes onto the
// function queue. An empty stage is complete the instant its in-degree
// reaches zero and propagates immediately. Caller holds mu.
func (s *Scheduler) activateStage(rs *runState, sn int) {
	if rs.faulted {
		return
	}
	sg := rs.stages[sn]
	if len(sg.nodes) == 0 {
		s.finishStage(rs, sn)
		return
	}
	for _, fn := range sg.independents {
		s.funcQueue = append(s.funcQueue, funcItem{stageNode: sn, funcNode: fn})
		rs.inFlight[sn]++
		s.workCond.Signal()
	}
}

// finishStage marks a stage drained exactly once and decrements its
// dependant stages' remaining in-degrees, activating any that reach zero.
// Drain-and-propagate is a single critical section: caller holds mu.
func (s *Scheduler) finishStage(rs *runState, sn int) {
	if rs.stageDone[sn] {
		return
	}
	rs.stageDone[sn] = true
	for _, dep := range rs.machine.nodes[sn].dependants {
		rs.stageRemaining[dep]--
		if rs.stageRemaining[dep] == 0 {
			s.activateStage(rs, dep)
		}
	}
}

// stopPool terminates the workers, joins them, and orphans any tasks left
// on the queue so their promises cannot be joined forever.
func (s *Scheduler) stopPool(wg *sync.WaitGroup) {
	s.mu.Lock()
	s.terminate = true
	s.workCond.Broadcast()
	s.mu.Unlock()
	wg.Wait()

	s.mu.Lock()
	s.terminated = true
	orphans := s.taskQueue
	s.taskQueue = nil
	s.mu.Unlock()

	for _, t := range orphans {
		t.promise.state.complete(ErrTaskOrphaned)
	}
	if len(orphans) > 0 {
		s.logger.Warn("orphaned queued tasks at shutdown", slog.Int("count", len(orphans)))
	}
	s.logger.Debug("worker pool stopped")
}

// appendJournal records best-effort; journal failures never affect
// execution.
func (s *Scheduler) appendJournal(rec journal.Record) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(rec); err != nil {
		observability.LogJournalError(s.logger, string(rec.Kind), err)
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
