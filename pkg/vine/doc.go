// Package vine is a static, declarative task-graph scheduler for in-process
// parallel execution.
//
// Applications describe a hierarchy of work up front: a set of machines
// (top-level execution plans), each composed of stages (coarse phases with
// ordering dependencies), each composed of functions (fine-grained units of
// work with their own ordering dependencies). A Builder collects these
// declarations and freezes them into an immutable Program; a Scheduler then
// runs the active machine to completion on a fixed worker pool, honoring
// every dependency edge, and transitions between machines until shutdown is
// requested.
//
// Alongside graph work, application code may issue ad-hoc tasks at any time
// and await their completion through a Promise.
//
// Basic usage:
//
//	b := vine.NewBuilder().
//	    AddMachine("boot").
//	    AddStage("load").
//	    LinkFunc("load/read", "load", readFn).
//	    LinkFunc("load/parse", "load", parseFn, "load/read").
//	    LinkStage("boot/load", "boot", "load").
//	    SetDefaultMachine("boot")
//
//	prog, err := b.Freeze()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sched := vine.New(prog)
//	if err := sched.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// A machine keeps re-running until another machine is queued with
// SetNextMachine or shutdown is requested with RequestShutdown; both are
// effective at machine boundaries, never mid-machine.
package vine
