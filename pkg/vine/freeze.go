package vine

import (
	"errors"
	"fmt"

	"github.com/gammazero/toposort"
)

// Freeze validates the collected declarations and produces an immutable,
// executable Program. Returns an error joining every validation failure.
//
// Validation checks:
//  1. Every semantic error recorded during registration (unknown stage or
//     machine, duplicate link, default machine set twice).
//  2. Every dependency reference resolves to a registered link of the same
//     graph. A reference to a link owned by another graph is reported as a
//     cross-graph dependency; a reference to a link never registered
//     anywhere is reported as unresolved.
//  3. Every stage graph and every machine graph is acyclic.
//  4. The default machine, if designated, names a declared machine.
//
// On success the builder is frozen: any further registration panics.
// Designating no default machine is not a freeze error; Scheduler.Run
// reports ErrNoDefaultMachine instead.
func (b *Builder) Freeze() (*Program, error) {
	b.checkMutable()

	errs := append([]error(nil), b.errs...)

	b.stages.Range(func(name string, g *egraph[Func]) bool {
		errs = append(errs, b.validateGraph("stage "+name, boundFlags(g.nodes), g.links(), edgesOf(g))...)
		return true
	})
	b.machines.Range(func(name string, g *egraph[string]) bool {
		errs = append(errs, b.validateGraph("machine "+name, boundFlags(g.nodes), g.links(), edgesOf(g))...)
		return true
	})

	if b.defaultMachine != "" && !b.machines.Has(b.defaultMachine) {
		errs = append(errs, fmt.Errorf("%w: default machine %s", ErrUnknownMachine, b.defaultMachine))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	b.stages.Range(func(_ string, g *egraph[Func]) bool {
		g.findIndependents()
		return true
	})
	b.machines.Range(func(_ string, g *egraph[string]) bool {
		g.findIndependents()
		return true
	})

	b.frozen = true
	return &Program{
		machines:       b.machines,
		stages:         b.stages,
		defaultMachine: b.defaultMachine,
	}, nil
}

// MustFreeze is like Freeze but panics on validation failure.
// Intended for program-startup registration where a malformed graph is
// unrecoverable.
func (b *Builder) MustFreeze() *Program {
	prog, err := b.Freeze()
	if err != nil {
		panic(fmt.Sprintf("vine: freeze failed: %v", err))
	}
	return prog
}

// validateGraph checks one graph for dangling references and cycles.
func (b *Builder) validateGraph(owner string, bound []bool, links []string, edges []toposort.Edge) []error {
	var errs []error

	for i, ok := range bound {
		if ok {
			continue
		}
		// The node was allocated by a dependency reference but never
		// registered. If the link is bound in some other graph the caller
		// crossed graph levels; otherwise the link simply does not exist.
		if other, exists := b.linkOwner[links[i]]; exists && other != owner {
			errs = append(errs, &LinkError{Link: links[i], Graph: owner,
				Err: fmt.Errorf("%w (registered in %s)", ErrCrossGraphDependency, other)})
		} else {
			errs = append(errs, &LinkError{Link: links[i], Graph: owner, Err: ErrUnresolvedLink})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if _, err := toposort.Toposort(edges); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s: %v", ErrCycleDetected, owner, err))
	}
	return errs
}

// boundFlags extracts the bound flag of every node.
func boundFlags[P any](nodes []gnode[P]) []bool {
	out := make([]bool, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].bound
	}
	return out
}

// edgesOf lowers a graph to toposort edges over link identities.
// Independent nodes get a nil-source edge so they participate in the sort.
func edgesOf[P any](g *egraph[P]) []toposort.Edge {
	var edges []toposort.Edge
	for i := range g.nodes {
		if g.nodes[i].indegree == 0 {
			edges = append(edges, toposort.Edge{nil, g.nodes[i].link})
		}
		for _, dep := range g.nodes[i].dependants {
			edges = append(edges, toposort.Edge{g.nodes[i].link, g.nodes[dep].link})
		}
	}
	return edges
}
