package library

import (
	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var parallelSequenceDefs = []attribute.Definition{
	literalDef("successThreshold", attribute.TypeUint, false),
	literalDef("failureThreshold", attribute.TypeUint, false),
}

// ParallelSequence ticks every non-terminal child each tick and resolves
// by threshold (§4.5). Per the reconciliation policy spec.md §9 settled
// on, when both thresholds are explicit and their sum would exceed N+1,
// failureThreshold is the one reduced.
type ParallelSequence struct {
	*instr.Base
}

func newParallelSequence(id string) instr.Instruction {
	p := &ParallelSequence{}
	p.Base = instr.NewBase(p, id, "ParallelSequence", parallelSequenceDefs, nil)
	return p
}

func (p *ParallelSequence) thresholds(ws *workspace.Workspace, u ui.UserInterface) (s, f int) {
	n := len(p.Children())
	hasS := p.Attributes().Exists("successThreshold")
	hasF := p.Attributes().Exists("failureThreshold")
	s = getIntDefault(p.Base, parallelSequenceDefs, "successThreshold", ws, u, n)
	f = getIntDefault(p.Base, parallelSequenceDefs, "failureThreshold", ws, u, 1)

	if s+f > n+1 {
		switch {
		case hasS && hasF:
			f = n + 1 - s
		case hasS:
			f = n + 1 - s
		case hasF:
			s = n + 1 - f
		default:
			f = n + 1 - s
		}
		if f < 0 {
			f = 0
		}
		if s < 0 {
			s = 0
		}
	}
	return s, f
}

func (p *ParallelSequence) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	s, f := p.thresholds(ws, u)

	successCount, failureCount, runningCount := 0, 0, 0
	for _, c := range p.Children() {
		st := c.Status()
		if !st.Terminal() {
			st = c.Tick(u, ws)
		}
		switch st {
		case status.Success:
			successCount++
		case status.Failure:
			failureCount++
		case status.Running:
			runningCount++
		}
	}

	if successCount >= s {
		haltNonTerminal(p.Children())
		return status.Success
	}
	if failureCount >= f {
		haltNonTerminal(p.Children())
		return status.Failure
	}
	if runningCount > 0 {
		return status.Running
	}
	return status.NotFinished
}

func haltNonTerminal(children []instr.Instruction) {
	for _, c := range children {
		if !c.Status().Terminal() {
			c.Halt()
		}
	}
}

func init() {
	registry.RegisterInstruction("ParallelSequence", newParallelSequence)
}
