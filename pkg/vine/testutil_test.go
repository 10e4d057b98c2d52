package vine

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recorder collects event names in completion order.
// Safe for concurrent use from worker goroutines.
type recorder struct {
	mu     sync.Mutex
	events []string
}

// mark returns a Func that records name each time it runs.
func (r *recorder) mark(name string) Func {
	return func(ctx Context) error {
		r.add(name)
		return nil
	}
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// index returns the position of the first occurrence of name, or -1.
func (r *recorder) index(name string) int {
	for i, e := range r.list() {
		if e == name {
			return i
		}
	}
	return -1
}

// count returns the number of occurrences of name.
func (r *recorder) count(name string) int {
	n := 0
	for _, e := range r.list() {
		if e == name {
			n++
		}
	}
	return n
}

// runSched runs the scheduler and fails the test if it does not return
// within a generous deadline. Every test machine eventually requests
// shutdown, cancels its context or faults, so a hang means a quiescence
// bug.
func runSched(t *testing.T, s *Scheduler) error {
	t.Helper()
	return runSchedCtx(t, s, context.Background())
}

func runSchedCtx(t *testing.T, s *Scheduler, ctx context.Context) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	select {
	case err := <-errCh:
		return err
	case <-time.After(30 * time.Second):
		t.Fatal("scheduler did not drain in time")
		return nil
	}
}

// shutdownAfter wraps fn so the machine requests shutdown once fn has run.
func shutdownAfter(fn Func) Func {
	return func(ctx Context) error {
		err := fn(ctx)
		ctx.RequestShutdown()
		return err
	}
}
