package vine

import "context"

// runState is the per-run mutable mirror of one machine's graphs: readiness
// counters sized to the machine, rebuilt from static in-degrees at every
// machine start. All fields are guarded by the scheduler's queue mutex
// except the identifiers, which are immutable for the run.
type runState struct {
	name  string // machine name
	runID string

	machine *egraph[string]
	stages  []*egraph[Func] // inner graph per stage node, index-aligned

	stageRemaining []int   // remaining stage in-degree
	funcRemaining  [][]int // remaining function in-degree, per stage node
	inFlight       []int   // function nodes queued or running, per stage node
	stageDone      []bool  // one-shot drain flag, per stage node

	faulted bool
	faults  []error

	// spanCtx carries the machine-run span for child function spans.
	spanCtx context.Context
}

// newRunState snapshots the machine's static in-degrees into fresh
// counters. At machine start every remaining-in-degree equals the static
// in-degree.
func newRunState(prog *Program, name, runID string) (*runState, error) {
	mg, ok := prog.machineGraph(name)
	if !ok {
		return nil, ErrUnknownMachine
	}

	rs := &runState{
		name:           name,
		runID:          runID,
		machine:        mg,
		stages:         make([]*egraph[Func], len(mg.nodes)),
		stageRemaining: make([]int, len(mg.nodes)),
		funcRemaining:  make([][]int, len(mg.nodes)),
		inFlight:       make([]int, len(mg.nodes)),
		stageDone:      make([]bool, len(mg.nodes)),
	}

	for sn := range mg.nodes {
		sg, ok := prog.stageGraph(mg.nodes[sn].payload)
		if !ok {
			return nil, ErrUnknownStage
		}
		rs.stages[sn] = sg
		rs.stageRemaining[sn] = mg.nodes[sn].indegree
		rs.funcRemaining[sn] = make([]int, len(sg.nodes))
		for fn := range sg.nodes {
			rs.funcRemaining[sn][fn] = sg.nodes[fn].indegree
		}
	}
	return rs, nil
}

// stageName returns the name of the stage at a machine-graph node.
func (rs *runState) stageName(sn int) string {
	return rs.machine.nodes[sn].payload
}

// funcItem locates one function node within the active machine.
type funcItem struct {
	stageNode int
	funcNode  int
}
