package vine

import (
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/TakiKacper/vine/pkg/vine/journal"
	"github.com/TakiKacper/vine/pkg/vine/observability"
)

// workerLoop is the loop every pool worker runs: wait, pick work, run,
// account. Function work has priority over task work because machine
// completion blocks on function drain.
//
// The busy counter is incremented inside the critical section where a
// function is dequeued and decremented inside the critical section where
// its dependant enqueues happen, which makes "function queue empty and no
// worker busy" a monotone quiescence predicate for the machine.
func (s *Scheduler) workerLoop(id int) {
	s.mu.Lock()
	for {
		if s.terminate {
			break
		}

		if len(s.funcQueue) > 0 {
			item := s.funcQueue[0]
			s.funcQueue = s.funcQueue[1:]
			rs := s.run
			s.busy++
			s.mu.Unlock()

			err := s.executeFunction(id, rs, item)

			s.mu.Lock()
			s.accountFunction(rs, item, err)
			continue
		}

		if len(s.taskQueue) > 0 {
			item := s.taskQueue[0]
			s.taskQueue = s.taskQueue[1:]
			s.mu.Unlock()

			s.executeTask(id, item)

			s.mu.Lock()
			continue
		}

		if s.busy == 0 {
			s.drainCond.Broadcast()
		}
		s.workCond.Wait()
	}
	s.mu.Unlock()
}

// executeFunction runs one function node outside the lock, with panic
// recovery and per-function observability.
func (s *Scheduler) executeFunction(workerID int, rs *runState, item funcItem) (err error) {
	sg := rs.stages[item.stageNode]
	node := &sg.nodes[item.funcNode]
	stage := rs.stageName(item.stageNode)

	ctx := &workerContext{
		Context:  s.baseCtx,
		sched:    s,
		runID:    rs.runID,
		machine:  rs.name,
		stage:    stage,
		link:     node.link,
		workerID: workerID,
		logger: s.logger.With(
			slog.String("run_id", rs.runID),
			slog.String("machine", rs.name),
			slog.String("stage", stage),
			slog.String("link", node.link),
			slog.Int("worker_id", workerID),
		),
	}

	observability.LogFunctionStart(ctx.logger)
	var span trace.Span
	spanCtx := rs.spanCtx
	if s.tracing {
		spanCtx, span = s.spans.StartFunctionSpan(rs.spanCtx, node.link)
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Link: node.link, Value: r, Stack: string(debug.Stack())}
		}
		duration := time.Since(start)
		s.metrics.RecordFunctionExecution(spanCtx, node.link, duration, err)
		if s.tracing {
			s.spans.EndSpanWithError(span, err)
		}
		if err != nil {
			err = &FunctionError{Machine: rs.name, Stage: stage, Link: node.link, Err: err}
			observability.LogFunctionError(ctx.logger, err)
		} else {
			observability.LogFunctionComplete(ctx.logger, float64(duration.Milliseconds()))
		}
		s.appendJournal(journal.Record{
			RunID: rs.runID, Machine: rs.name, Stage: stage, Link: node.link,
			Kind: journal.KindFunction, Timestamp: time.Now().UTC(),
			Duration: duration, Error: errText(err),
		})
	}()

	return node.payload(ctx)
}

// accountFunction performs the readiness updates for a finished function.
// Caller holds mu.
//
// Order matters: the in-flight decrement happens before the dependant
// traversal, and both are inside the same critical section, so the
// "stage drained" check is atomic with the enqueues that could revive it.
func (s *Scheduler) accountFunction(rs *runState, item funcItem, err error) {
	if err != nil {
		rs.faults = append(rs.faults, err)
		if !rs.faulted {
			rs.faulted = true
			// Queued-but-unstarted functions of the faulted run are
			// discarded; running ones complete.
			s.funcQueue = nil
		}
	}

	sg := rs.stages[item.stageNode]
	rs.inFlight[item.stageNode]--

	if !rs.faulted {
		for _, dep := range sg.nodes[item.funcNode].dependants {
			rs.funcRemaining[item.stageNode][dep]--
			if rs.funcRemaining[item.stageNode][dep] == 0 {
				s.funcQueue = append(s.funcQueue, funcItem{stageNode: item.stageNode, funcNode: dep})
				rs.inFlight[item.stageNode]++
				s.workCond.Signal()
			}
		}
		if rs.inFlight[item.stageNode] == 0 {
			s.finishStage(rs, item.stageNode)
		}
	}

	s.busy--
	if len(s.funcQueue) == 0 && s.busy == 0 {
		s.drainCond.Broadcast()
	}
}

// executeTask runs one ad-hoc task outside the lock and completes its
// promise. A task error or panic lands in the promise's error slot; the
// promise completes either way.
func (s *Scheduler) executeTask(workerID int, item taskItem) {
	ctx := &workerContext{
		Context:  s.baseCtx,
		sched:    s,
		link:     "task",
		workerID: workerID,
		logger: s.logger.With(
			slog.String("link", "task"),
			slog.Int("worker_id", workerID),
		),
	}

	start := time.Now()
	err := runTask(ctx, item)
	duration := time.Since(start)

	s.metrics.RecordTaskExecution(s.baseCtx, duration, err)
	if err != nil {
		err = &TaskError{Err: err}
		observability.LogTaskError(ctx.logger, err)
	} else {
		observability.LogTaskComplete(ctx.logger, float64(duration.Milliseconds()))
	}

	item.promise.state.complete(err)
}

// runTask isolates the panic recovery scope of the task body.
func runTask(ctx Context, item taskItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Link: "task", Value: r, Stack: string(debug.Stack())}
		}
	}()
	return item.fn(ctx, item.arg)
}
