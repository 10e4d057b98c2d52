package vine

import (
	"context"
	"sync"
	"sync/atomic"
)

// Task is an ad-hoc unit of work outside the graph. It receives the
// execution Context and the argument passed to IssueTask. A returned error
// (or a panic) is recorded in the promise; the promise completes either way.
type Task func(ctx Context, arg any) error

// Promise is a handle to a task's completion state. Handles may be copied
// and shared freely; every copy observes the same terminal state, which
// stays alive as long as any handle (or the worker running the task)
// references it.
//
// The zero Promise holds no state and reports itself completed.
type Promise struct {
	state *promiseState
}

// promiseState is the shared terminal state of one issued task.
type promiseState struct {
	once      sync.Once
	completed atomic.Bool
	err       error // written once before done closes
	done      chan struct{}
}

func newPromise() *Promise {
	return &Promise{state: &promiseState{done: make(chan struct{})}}
}

// complete marks the terminal state exactly once.
// err is published by the close of done.
func (s *promiseState) complete(err error) {
	s.once.Do(func() {
		s.err = err
		s.completed.Store(true)
		close(s.done)
	})
}

// Completed reports whether the task reached its terminal state.
// Once true, it remains true. A promise holding no state reports true.
func (p *Promise) Completed() bool {
	if p == nil || p.state == nil {
		return true
	}
	return p.state.completed.Load()
}

// Done returns a channel closed when the task completes, for use in
// select statements. Returns a closed channel for a stateless promise.
func (p *Promise) Done() <-chan struct{} {
	if p == nil || p.state == nil {
		return closedChan
	}
	return p.state.done
}

// Err returns the task's error once completed: a TaskError wrapping the
// body's error (or wrapping a PanicError if it panicked), or ErrTaskOrphaned
// if the task was still queued at shutdown. Returns nil before completion.
func (p *Promise) Err() error {
	if p == nil || p.state == nil {
		return nil
	}
	select {
	case <-p.state.done:
		return p.state.err
	default:
		return nil
	}
}

// Join blocks until the task completes or ctx is cancelled. On completion
// it returns the task's error (see Err); on cancellation it returns
// ctx.Err().
//
// Calling Join from inside a function or task body can starve a small
// pool: the waiting worker cannot pick up the task it is waiting for.
// Prefer Done() with select, or join only from host goroutines.
func (p *Promise) Join(ctx context.Context) error {
	if p == nil || p.state == nil {
		return nil
	}
	select {
	case <-p.state.done:
		return p.state.err
	default:
	}
	select {
	case <-p.state.done:
		return p.state.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// taskItem is one entry of the task queue.
type taskItem struct {
	promise *Promise
	fn      Task
	arg     any
}
