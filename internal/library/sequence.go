package library

import (
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

// Sequence ticks children left to right from the first non-Success child.
// A Failure short-circuits; all-Success yields Success; any other status
// is propagated as-is (§4.5). Children are never implicitly reset between
// ticks, so partial execution across ticks is expected.
type Sequence struct {
	*instr.Base
}

func newSequence(id string) instr.Instruction {
	s := &Sequence{}
	s.Base = instr.NewBase(s, id, "Sequence", nil, nil)
	return s
}

func (s *Sequence) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return tickInOrder(s.Base, u, ws, false)
}

// Fallback is Sequence's dual: short-circuits on the first Success.
type Fallback struct {
	*instr.Base
}

func newFallback(id string) instr.Instruction {
	f := &Fallback{}
	f.Base = instr.NewBase(f, id, "Fallback", nil, nil)
	return f
}

func (f *Fallback) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return tickInOrder(f.Base, u, ws, true)
}

// tickInOrder implements both Sequence (fallback=false) and Fallback
// (fallback=true): it walks children left to right, ticking each
// non-terminal one, stopping at the "short-circuit" status for that mode.
func tickInOrder(b *instr.Base, u ui.UserInterface, ws *workspace.Workspace, fallback bool) status.ExecutionStatus {
	shortCircuit := status.Failure
	passThrough := status.Success
	if fallback {
		shortCircuit, passThrough = status.Success, status.Failure
	}

	for _, c := range b.Children() {
		st := c.Status()
		if st == passThrough {
			continue
		}
		st = c.Tick(u, ws)
		switch st {
		case shortCircuit:
			return shortCircuit
		case passThrough:
			continue
		default:
			return st
		}
	}
	return passThrough
}

func init() {
	registry.RegisterInstruction("Sequence", newSequence)
	registry.RegisterInstruction("Fallback", newFallback)
}
