package library

import (
	"fmt"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/errs"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var includeDefs = []attribute.Definition{
	literalDef("path", attribute.TypeString, true),
	literalDef("file", attribute.TypeString, false),
}

// Include is a decorator whose child is resolved, at Setup, to another
// named top-level instruction (in the same procedure, or in an external
// procedure file when "file" is given). The resolved subtree is owned by
// its source procedure; Include holds a non-owning reference and rejects
// resolution cycles with CyclicInclude (§4.5, §9).
type Include struct {
	*instr.Base
}

func newInclude(id string) instr.Instruction {
	i := &Include{}
	i.Base = instr.NewBase(i, id, "Include", includeDefs, nil)
	return i
}

func (i *Include) SetupImpl(ctx *instr.SetupContext) error {
	path, _ := i.Attributes().Raw("path")
	file, hasFile := i.Attributes().Raw("file")

	cycleKey := file + "::" + path
	already, leave := instr.VisitingCycle(ctx, cycleKey)
	if already {
		return fmt.Errorf("%w: %s", errs.CyclicInclude, cycleKey)
	}
	defer leave()

	var target instr.Instruction
	var err error
	if hasFile && file != "" {
		if ctx.LoadExternal == nil {
			return fmt.Errorf("include: no external loader configured for file %q", file)
		}
		target, err = ctx.LoadExternal(file, path)
	} else {
		var ok bool
		if ctx.Resolve == nil {
			return fmt.Errorf("include: no resolver configured for path %q", path)
		}
		target, ok = ctx.Resolve(path)
		if !ok {
			err = fmt.Errorf("include: no such top-level instruction %q", path)
		}
	}
	if err != nil {
		return err
	}

	if err := target.Setup(ctx); err != nil {
		return err
	}
	i.SetChildren([]instr.Instruction{target})
	return nil
}

func (i *Include) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return i.Children()[0].Tick(u, ws)
}

var includeProcedureDefs = []attribute.Definition{
	literalDef("file", attribute.TypeString, true),
	literalDef("path", attribute.TypeString, false),
}

// IncludeProcedure behaves like Include but additionally merges the
// external procedure's workspace into the current one without overriding
// any name already present (§4.5, §9 Open Questions).
type IncludeProcedure struct {
	*instr.Base
}

func newIncludeProcedure(id string) instr.Instruction {
	i := &IncludeProcedure{}
	i.Base = instr.NewBase(i, id, "IncludeProcedure", includeProcedureDefs, nil)
	return i
}

func (i *IncludeProcedure) SetupImpl(ctx *instr.SetupContext) error {
	file, _ := i.Attributes().Raw("file")
	path, _ := i.Attributes().Raw("path")

	cycleKey := "proc::" + file + "::" + path
	already, leave := instr.VisitingCycle(ctx, cycleKey)
	if already {
		return fmt.Errorf("%w: %s", errs.CyclicInclude, cycleKey)
	}
	defer leave()

	if ctx.LoadExternal == nil || ctx.LoadExternalWorkspace == nil || ctx.MergeWorkspace == nil {
		return fmt.Errorf("include-procedure: no external loader configured for file %q", file)
	}

	externalWS, err := ctx.LoadExternalWorkspace(file)
	if err != nil {
		return err
	}
	if err := ctx.MergeWorkspace(externalWS); err != nil {
		return err
	}

	target, err := ctx.LoadExternal(file, path)
	if err != nil {
		return err
	}
	if err := target.Setup(ctx); err != nil {
		return err
	}
	i.SetChildren([]instr.Instruction{target})
	return nil
}

func (i *IncludeProcedure) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return i.Children()[0].Tick(u, ws)
}

func init() {
	registry.RegisterInstruction("Include", newInclude)
	registry.RegisterInstruction("IncludeProcedure", newIncludeProcedure)
}
