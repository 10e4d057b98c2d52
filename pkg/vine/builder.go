package vine

import (
	"fmt"
	"strings"

	"github.com/TakiKacper/vine/pkg/vine/registry"
)

// Func is a graph unit of work. It receives the execution Context and
// returns an error; a non-nil error (or a panic) marks the machine run
// faulted. The run still drains cleanly before Run reports the fault.
type Func func(ctx Context) error

// Builder collects machine, stage and link declarations and freezes them
// into an immutable Program.
//
// Builder is NOT thread-safe. Populate it from a single goroutine before
// execution begins, then call Freeze() once. Further mutation after Freeze
// panics.
//
// Dependency references name links, not nodes: the string passed as a
// dependency is the link identity of some other LinkFunc (or LinkStage)
// registration. Forward references are allowed - a dependency may name a
// link that is registered later. Freeze validates that every referenced
// link was eventually registered in the same graph.
type Builder struct {
	machines *registry.Registry[string, *egraph[string]]
	stages   *registry.Registry[string, *egraph[Func]]

	// linkOwner maps every registered link identity to the graph that owns
	// it, so cross-graph dependency references can be diagnosed at Freeze.
	linkOwner map[string]string

	defaultMachine string
	errs           []error
	frozen         bool
}

// NewBuilder creates an empty registration builder.
func NewBuilder() *Builder {
	return &Builder{
		machines:  registry.New[string, *egraph[string]](),
		stages:    registry.New[string, *egraph[Func]](),
		linkOwner: make(map[string]string),
	}
}

// checkName panics on malformed identifiers. Misuse of the builder API is
// a programming error, not a runtime condition.
func checkName(kind, name string) {
	if name == "" {
		panic("vine: " + kind + " name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		panic("vine: " + kind + " name cannot contain whitespace")
	}
}

func (b *Builder) checkMutable() {
	if b.frozen {
		panic("vine: builder is frozen")
	}
}

// AddMachine declares a machine. Returns the builder for chaining.
//
// Panics if the name is empty, contains whitespace, or was already
// declared.
func (b *Builder) AddMachine(name string) *Builder {
	b.checkMutable()
	checkName("machine", name)
	if b.machines.Has(name) {
		panic(fmt.Sprintf("vine: duplicate machine: %s", name))
	}
	b.machines.Register(name, newEgraph[string]())
	return b
}

// AddStage declares a stage. Returns the builder for chaining.
//
// A stage may later be linked into any number of machines; its inner
// function graph is shared across those appearances.
//
// Panics if the name is empty, contains whitespace, or was already
// declared.
func (b *Builder) AddStage(name string) *Builder {
	b.checkMutable()
	checkName("stage", name)
	if b.stages.Has(name) {
		panic(fmt.Sprintf("vine: duplicate stage: %s", name))
	}
	b.stages.Register(name, newEgraph[Func]())
	return b
}

// LinkFunc registers a function as a node of the target stage's graph under
// the given link identity. Each dependency names another function link of
// the same stage that must complete first. Returns the builder for chaining.
//
// Panics if link or stage is malformed or fn is nil. Semantic errors
// (unknown stage, duplicate link, cross-graph dependency) are collected
// and reported by Freeze.
func (b *Builder) LinkFunc(link, stage string, fn Func, deps ...string) *Builder {
	b.checkMutable()
	checkName("link", link)
	checkName("stage", stage)
	if fn == nil {
		panic("vine: function cannot be nil")
	}

	g, ok := b.stages.Get(stage)
	if !ok {
		b.errs = append(b.errs, &LinkError{Link: link, Graph: "stage " + stage, Err: ErrUnknownStage})
		return b
	}
	b.registerLink(link, "stage "+stage)
	if err := g.bind(link, fn, deps); err != nil {
		b.errs = append(b.errs, &LinkError{Link: link, Graph: "stage " + stage, Err: err})
	}
	return b
}

// LinkStage registers a stage as a node of the target machine's graph under
// the given link identity. Each dependency names another stage link of the
// same machine that must complete first. Returns the builder for chaining.
//
// Panics on malformed names. Semantic errors are collected and reported
// by Freeze.
func (b *Builder) LinkStage(link, machine, stage string, deps ...string) *Builder {
	b.checkMutable()
	checkName("link", link)
	checkName("machine", machine)
	checkName("stage", stage)

	g, ok := b.machines.Get(machine)
	if !ok {
		b.errs = append(b.errs, &LinkError{Link: link, Graph: "machine " + machine, Err: ErrUnknownMachine})
		return b
	}
	if !b.stages.Has(stage) {
		b.errs = append(b.errs, &LinkError{Link: link, Graph: "machine " + machine, Err: ErrUnknownStage})
		return b
	}
	b.registerLink(link, "machine "+machine)
	if err := g.bind(link, stage, deps); err != nil {
		b.errs = append(b.errs, &LinkError{Link: link, Graph: "machine " + machine, Err: err})
	}
	return b
}

// registerLink records link ownership for cross-graph diagnostics.
// A link registered under two different graphs is a duplicate as well;
// egraph.bind only catches duplicates within one graph.
func (b *Builder) registerLink(link, owner string) {
	if prev, ok := b.linkOwner[link]; ok && prev != owner {
		b.errs = append(b.errs, &LinkError{Link: link, Graph: owner, Err: ErrDuplicateLink})
		return
	}
	b.linkOwner[link] = owner
}

// SetDefaultMachine designates the machine the scheduler runs first.
// Returns the builder for chaining.
//
// Panics on a malformed name. A second call, or a name that was never
// declared, is reported by Freeze.
func (b *Builder) SetDefaultMachine(name string) *Builder {
	b.checkMutable()
	checkName("machine", name)
	if b.defaultMachine != "" {
		b.errs = append(b.errs, fmt.Errorf("%w: %s, then %s", ErrDefaultAlreadySet, b.defaultMachine, name))
		return b
	}
	b.defaultMachine = name
	return b
}
