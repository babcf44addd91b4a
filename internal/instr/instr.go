// Package instr implements the polymorphic Instruction machine of
// spec.md §4.4: the non-virtual Tick that enforces status accounting and
// observer notification regardless of concrete behavior (the NVI
// boundary), independent of what any concrete compound/decorator/action
// does in its hooks.
package instr

import (
	"sync"
	"sync/atomic"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

// Instruction is the public, non-virtual surface every concrete node
// exposes. Status transitions only occur inside Tick or Reset.
type Instruction interface {
	ID() string
	TypeName() string
	Name() string
	SetName(string)
	Info() ui.NodeInfo

	Status() status.ExecutionStatus
	Children() []Instruction
	AddChild(Instruction)
	IsRoot() bool
	SetRoot(bool)

	Attributes() *attribute.Bag

	Setup(ctx *SetupContext) error
	Tick(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus
	Reset(u ui.UserInterface)
	Halt()
	Halted() bool
}

// Impl is the minimal capability every concrete instruction must provide:
// the single mandatory tick hook. InitImpl, HaltImpl, and SetupImpl are
// optional and detected by capability interfaces below, matching Go's
// usual "ask only for what you need" idiom rather than forcing every
// concrete type to stub out hooks it doesn't use.
type Impl interface {
	TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus
}

// Initializer is implemented by instructions that need one-time setup
// work the first time they are ticked (NotStarted -> NotFinished/Failure).
type Initializer interface {
	InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool
}

// Halter is implemented by instructions with asynchronous work to cancel
// promptly on Halt. The default (no Halter) simply relies on the halt
// flag being observed on the next tick.
type Halter interface {
	HaltImpl()
}

// SetupHook is implemented by instructions that must do their own
// resolution work at Setup time beyond attribute validation (Include,
// IncludeProcedure). It runs after attribute validation and before the
// generic recursion into Children().
type SetupHook interface {
	SetupImpl(ctx *SetupContext) error
}

// SetupContext carries what an instruction's Setup needs beyond its own
// attribute bag: the owning Workspace, and (for Include/IncludeProcedure)
// ways to resolve another top-level instruction by name or load an
// external procedure file. Kept as function fields rather than an
// interface to avoid a dependency cycle with package procedure, which is
// the only thing that constructs a non-trivial SetupContext.
type SetupContext struct {
	Workspace *workspace.Workspace

	// Resolve looks up another top-level instruction in the same
	// procedure by name, for Include without a file attribute.
	Resolve func(name string) (Instruction, bool)

	// LoadExternal loads a named top-level instruction from an external
	// procedure file, for Include/IncludeProcedure with a file
	// attribute.
	LoadExternal func(file, path string) (Instruction, error)

	// LoadExternalWorkspace loads the workspace of an external
	// procedure file, for IncludeProcedure.
	LoadExternalWorkspace func(file string) (*workspace.Workspace, error)

	// MergeWorkspace merges variables from an external workspace into
	// the current one, skipping any name already present (§4.5
	// IncludeProcedure, §9 Open Questions: external-ignored-on-collision).
	MergeWorkspace func(external *workspace.Workspace) error

	visiting map[string]bool
}

func (c *SetupContext) enter(key string) func() {
	if c.visiting == nil {
		c.visiting = make(map[string]bool)
	}
	c.visiting[key] = true
	return func() { delete(c.visiting, key) }
}

func (c *SetupContext) visitingFlag(key string) bool {
	return c.visiting != nil && c.visiting[key]
}

// Base implements the NVI contract; concrete instructions embed *Base and
// supply themselves as Impl via NewBase.
type Base struct {
	id       string
	typeName string
	name     string

	defs        []attribute.Definition
	constraints []attribute.Constraint
	attrs       *attribute.Bag

	children []Instruction
	isRoot   bool

	mu     sync.Mutex // guards status; only the tick/runner thread mutates it, but Status() may be read concurrently (e.g. by the HTTP control surface)
	status status.ExecutionStatus

	halted atomic.Bool

	impl Impl
}

// NewBase constructs a Base. impl must at least implement Impl
// (TickImpl); it may additionally implement Initializer, Halter, and
// SetupHook.
func NewBase(impl Impl, id, typeName string, defs []attribute.Definition, constraints []attribute.Constraint, children ...Instruction) *Base {
	return &Base{
		id:          id,
		typeName:    typeName,
		defs:        defs,
		constraints: constraints,
		attrs:       attribute.NewBag(),
		children:    children,
		impl:        impl,
	}
}

func (b *Base) ID() string       { return b.id }
func (b *Base) TypeName() string { return b.typeName }
func (b *Base) Name() string     { return b.name }
func (b *Base) SetName(n string) { b.name = n }

func (b *Base) Info() ui.NodeInfo {
	return ui.NodeInfo{ID: b.id, TypeName: b.typeName, Name: b.name}
}

func (b *Base) Status() status.ExecutionStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Base) setStatus(s status.ExecutionStatus) { b.status = s }

func (b *Base) Children() []Instruction { return b.children }
func (b *Base) IsRoot() bool            { return b.isRoot }
func (b *Base) SetRoot(v bool)          { b.isRoot = v }
func (b *Base) Attributes() *attribute.Bag { return b.attrs }

// AddChild appends a child, transferring logical ownership to this
// instruction.
func (b *Base) AddChild(c Instruction) { b.children = append(b.children, c) }

// SetChildren replaces the child list outright, used by Include to attach
// its resolved (non-owning) subtree reference during SetupImpl.
func (b *Base) SetChildren(children []Instruction) { b.children = children }

// Halt sets the cooperative halt flag and calls HaltImpl if present. Safe
// to call from any goroutine.
func (b *Base) Halt() {
	b.halted.Store(true)
	if h, ok := b.impl.(Halter); ok {
		h.HaltImpl()
	}
	for _, c := range b.children {
		c.Halt()
	}
}

func (b *Base) Halted() bool { return b.halted.Load() }

// Setup validates attributes, runs the optional SetupHook, then
// recursively sets up children. No side effect of a failed Setup
// persists: attribute.Validate only reads the bag, and a SetupHook or
// child failure simply returns the error without this instruction having
// mutated any shared state beyond itself.
func (b *Base) Setup(ctx *SetupContext) error {
	if err := attribute.Validate(b.attrs, b.defs, b.constraints); err != nil {
		return err
	}
	if hook, ok := b.impl.(SetupHook); ok {
		if err := hook.SetupImpl(ctx); err != nil {
			return err
		}
	}
	for _, c := range b.children {
		if err := c.Setup(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset returns this subtree to NotStarted, clears the halt flag, and
// notifies the observer, recursing to children first so a parent observes
// its own reset after its subtree has already settled.
func (b *Base) Reset(u ui.UserInterface) {
	for _, c := range b.children {
		c.Reset(u)
	}
	b.halted.Store(false)
	b.mu.Lock()
	b.status = status.NotStarted
	b.mu.Unlock()
	if u != nil {
		u.UpdateInstructionStatus(b.Info(), status.NotStarted)
	}
}

// Tick is the non-virtual life-cycle entry point (§4.4):
//  1. A terminal status is returned unchanged, without invoking TickImpl.
//  2. NotStarted calls InitImpl (default success); failure transitions to
//     Failure, success to NotFinished. Either way the observer is
//     notified of the transition out of NotStarted.
//  3. The halt flag is left as-is for TickImpl to observe (cleared only by
//     Reset, since Halt may be asserted between ticks by another thread
//     per §5 and must remain visible to this tick).
//  4. TickImpl computes the new status.
//  5. The observer is notified iff the status changed.
func (b *Base) Tick(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	prior := b.Status()
	if prior.Terminal() {
		return prior
	}

	if prior == status.NotStarted {
		ok := true
		if initer, has := b.impl.(Initializer); has {
			ok = initer.InitImpl(u, ws)
		}
		next := status.NotFinished
		if !ok {
			next = status.Failure
		}
		b.mu.Lock()
		b.status = next
		b.mu.Unlock()
		if u != nil {
			u.UpdateInstructionStatus(b.Info(), next)
		}
		if next == status.Failure {
			return next
		}
		prior = next
	}

	next := b.impl.TickImpl(u, ws)

	if next != prior {
		b.mu.Lock()
		b.status = next
		b.mu.Unlock()
		if u != nil {
			u.UpdateInstructionStatus(b.Info(), next)
		}
	}
	return next
}

// VisitingCycle reports (and, via the returned leave func, tracks) whether
// key is already on the current Setup resolution path, for Include/
// IncludeProcedure cycle detection.
func VisitingCycle(ctx *SetupContext, key string) (already bool, leave func()) {
	if ctx.visitingFlag(key) {
		return true, func() {}
	}
	return false, ctx.enter(key)
}
