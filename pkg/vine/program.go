package vine

import "github.com/TakiKacper/vine/pkg/vine/registry"

// Program is an immutable, executable registration snapshot.
// It is created by calling Freeze() on a Builder.
//
// Program is thread-safe: all graphs are read-only after Freeze, so any
// number of schedulers and introspection calls may share one Program.
type Program struct {
	machines *registry.Registry[string, *egraph[string]]
	stages   *registry.Registry[string, *egraph[Func]]

	defaultMachine string
}

// DefaultMachine returns the designated default machine, or "" if none
// was designated.
func (p *Program) DefaultMachine() string {
	return p.defaultMachine
}

// Machines returns the names of all declared machines.
// The order is not guaranteed.
func (p *Program) Machines() []string {
	return p.machines.Keys()
}

// Stages returns the names of all declared stages.
// The order is not guaranteed.
func (p *Program) Stages() []string {
	return p.stages.Keys()
}

// HasMachine checks if a machine was declared.
func (p *Program) HasMachine(name string) bool {
	return p.machines.Has(name)
}

// HasStage checks if a stage was declared.
func (p *Program) HasStage(name string) bool {
	return p.stages.Has(name)
}

// MachineStages returns the stage names linked into a machine, in node
// order. Returns nil for an unknown machine.
func (p *Program) MachineStages(machine string) []string {
	g, ok := p.machines.Get(machine)
	if !ok {
		return nil
	}
	out := make([]string, len(g.nodes))
	for i := range g.nodes {
		out[i] = g.nodes[i].payload
	}
	return out
}

// StageFuncs returns the link identities of the functions linked into a
// stage, in node order. Returns nil for an unknown stage.
func (p *Program) StageFuncs(stage string) []string {
	g, ok := p.stages.Get(stage)
	if !ok {
		return nil
	}
	return g.links()
}

// machineGraph returns the outer graph of a machine.
// Used internally by the scheduler.
func (p *Program) machineGraph(name string) (*egraph[string], bool) {
	return p.machines.Get(name)
}

// stageGraph returns the inner graph of a stage.
// Used internally by the scheduler.
func (p *Program) stageGraph(name string) (*egraph[Func], bool) {
	return p.stages.Get(name)
}
