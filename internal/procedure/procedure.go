// Package procedure implements the top-level owner of §4.7: a named set
// of top-level instructions plus the workspace they share, responsible
// for Setup/Teardown sequencing and for resolving Include/IncludeProcedure
// references within itself and against sibling procedure files.
package procedure

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/workspace"
)

// Procedure owns a named collection of top-level instructions and the
// workspace they run against. Exactly one top-level instruction may be
// marked as root.
type Procedure struct {
	Name    string
	Version string

	logger arbor.ILogger

	Workspace *workspace.Workspace

	order    []string
	byName   map[string]instr.Instruction
	root     instr.Instruction

	// loader resolves another procedure file by name, for
	// Include/IncludeProcedure with a "file" attribute. Supplied by the
	// host (CLI or server) that knows the filesystem/bundle layout; nil
	// means external includes are unsupported.
	loader ExternalLoader
}

// ExternalLoader loads another procedure by file reference, used only to
// satisfy Include/IncludeProcedure's "file" attribute.
type ExternalLoader interface {
	Load(file string) (*Procedure, error)
}

// New constructs an empty Procedure bound to a fresh Workspace.
func New(name, version string, logger arbor.ILogger, loader ExternalLoader) *Procedure {
	return &Procedure{
		Name:      name,
		Version:   version,
		logger:    logger,
		Workspace: workspace.New(logger),
		byName:    make(map[string]instr.Instruction),
		loader:    loader,
	}
}

// AddTopLevel registers a top-level instruction under its own ID. If it is
// marked root (via SetRoot) it becomes the procedure's designated
// root; at most one root is permitted.
func (p *Procedure) AddTopLevel(i instr.Instruction) error {
	if _, exists := p.byName[i.ID()]; exists {
		return fmt.Errorf("procedure: duplicate top-level instruction id %q", i.ID())
	}
	p.byName[i.ID()] = i
	p.order = append(p.order, i.ID())
	if i.IsRoot() {
		if p.root != nil {
			return fmt.Errorf("procedure: more than one root instruction (%q and %q)", p.root.ID(), i.ID())
		}
		p.root = i
	}
	return nil
}

// Root returns the designated root instruction, if any.
func (p *Procedure) Root() instr.Instruction { return p.root }

// TopLevel returns the named top-level instruction.
func (p *Procedure) TopLevel(name string) (instr.Instruction, bool) {
	i, ok := p.byName[name]
	return i, ok
}

// TopLevelNames returns top-level instruction IDs in registration order.
func (p *Procedure) TopLevelNames() []string {
	return append([]string(nil), p.order...)
}

// Setup loads the workspace, then every top-level instruction in order,
// resolving Include/IncludeProcedure references as encountered. Plugin
// and JSON-type loading (§4.7) are delegated to the host process before
// Setup is called — the core has no shared-library loader of its own.
func (p *Procedure) Setup() error {
	if err := p.Workspace.SetupAll(); err != nil {
		return fmt.Errorf("procedure %s: %w", p.Name, err)
	}

	ctx := &instr.SetupContext{
		Workspace: p.Workspace,
		Resolve: func(name string) (instr.Instruction, bool) {
			return p.TopLevel(name)
		},
		LoadExternal: func(file, path string) (instr.Instruction, error) {
			external, err := p.loadExternal(file)
			if err != nil {
				return nil, err
			}
			if path == "" {
				if external.Root() == nil {
					return nil, fmt.Errorf("procedure: external %q has no root instruction", file)
				}
				return external.Root(), nil
			}
			target, ok := external.TopLevel(path)
			if !ok {
				return nil, fmt.Errorf("procedure: external %q has no instruction %q", file, path)
			}
			return target, nil
		},
		LoadExternalWorkspace: func(file string) (*workspace.Workspace, error) {
			external, err := p.loadExternal(file)
			if err != nil {
				return nil, err
			}
			return external.Workspace, nil
		},
		MergeWorkspace: func(external *workspace.Workspace) error {
			return p.mergeWorkspace(external)
		},
	}

	for _, name := range p.order {
		if err := p.byName[name].Setup(ctx); err != nil {
			return fmt.Errorf("procedure %s: setup %s: %w", p.Name, name, err)
		}
	}
	return nil
}

func (p *Procedure) loadExternal(file string) (*Procedure, error) {
	if p.loader == nil {
		return nil, fmt.Errorf("procedure: no external loader configured, cannot load %q", file)
	}
	return p.loader.Load(file)
}

// mergeWorkspace copies every variable from external into p's workspace,
// skipping any name already present (§9 Open Questions: external variables
// never override a colliding local name).
func (p *Procedure) mergeWorkspace(external *workspace.Workspace) error {
	for _, name := range external.Names() {
		if _, exists := p.Workspace.Variable(name); exists {
			continue
		}
		v, _ := external.Variable(name)
		if err := p.Workspace.AddVariable(name, v); err != nil {
			return fmt.Errorf("procedure %s: merge workspace: %w", p.Name, err)
		}
	}
	return nil
}

// Teardown tears down the workspace. Instructions have no explicit
// teardown of their own (§3: they are destroyed with the owning
// Procedure); only Variables hold resources that need releasing.
func (p *Procedure) Teardown() error {
	var firstErr error
	if err := p.Workspace.TeardownAll(); err != nil {
		firstErr = fmt.Errorf("procedure %s: teardown: %w", p.Name, err)
	}
	p.Workspace.Close()
	return firstErr
}
