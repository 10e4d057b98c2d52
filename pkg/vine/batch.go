package vine

// Batch gives each worker a private container slot indexed by its worker
// id, so user code can aggregate per-worker results without synchronisation
// or false sharing between workers.
//
// Correctness rests on the worker-id promise: ids are stable, unique per
// worker, and always in [0, WorkerCount). There is no synchronisation
// between slots; merge through All after the machine has drained.
//
//	counts := vine.NewBatch[int](sched)
//	// inside a function body:
//	*counts.Local(ctx)++
//	// after the run:
//	total := 0
//	for _, c := range counts.All() {
//	    total += *c
//	}
type Batch[C any] struct {
	slots []C
}

// NewBatch pre-allocates one zero-valued container per worker of the
// scheduler's pool.
func NewBatch[C any](s *Scheduler) *Batch[C] {
	return &Batch[C]{slots: make([]C, s.WorkerCount())}
}

// Local returns the executing worker's container.
// Call only from inside a function or task body.
func (b *Batch[C]) Local(ctx Context) *C {
	return &b.slots[ctx.WorkerID()]
}

// All returns references to every worker's container, for a post-drain
// merge.
func (b *Batch[C]) All() []*C {
	out := make([]*C, len(b.slots))
	for i := range b.slots {
		out[i] = &b.slots[i]
	}
	return out
}
