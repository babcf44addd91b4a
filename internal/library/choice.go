package library

import (
	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/errs"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var choiceDefs = []attribute.Definition{varNameDef("varName", true)}

// Choice reads an index or index array from varName and ticks the
// correspondingly indexed children in listed order, with Sequence
// semantics over that selected multiset (§4.5).
type Choice struct {
	*instr.Base
	indices []uint64
	cursor  int
	started bool
}

func newChoice(id string) instr.Instruction {
	c := &Choice{}
	c.Base = instr.NewBase(c, id, "Choice", choiceDefs, nil)
	return c
}

func (c *Choice) InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool {
	v, ok := getValue(c.Base, choiceDefs, "varName", ws, u)
	if !ok {
		logf(u, ui.Error, "Choice: varName unavailable")
		return false
	}
	indices, ok := v.AsUintSlice()
	if !ok {
		logf(u, ui.Error, "Choice: varName is not an unsigned integer or array")
		return false
	}
	c.indices = indices
	c.started = true
	return true
}

func (c *Choice) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	children := c.Children()
	for c.cursor < len(c.indices) {
		idx := c.indices[c.cursor]
		if int(idx) >= len(children) {
			logf(u, ui.Error, errs.OutOfRange.Error())
			return status.Failure
		}
		child := children[idx]
		st := child.Status()
		if !st.Terminal() {
			st = child.Tick(u, ws)
		}
		switch st {
		case status.Success:
			c.cursor++
			continue
		case status.Failure:
			return status.Failure
		default:
			return st
		}
	}
	return status.Success
}

var userChoiceDefs = []attribute.Definition{literalDef("description", attribute.TypeString, false)}

// UserChoice requests a child index from the UserInterface via an async
// future; when ready it ticks exactly that child and adopts its status.
type UserChoice struct {
	*instr.Base
	future  ui.Future[int]
	chosen  int
	ticking bool
}

func newUserChoice(id string) instr.Instruction {
	c := &UserChoice{}
	c.Base = instr.NewBase(c, id, "UserChoice", userChoiceDefs, nil)
	return c
}

func (c *UserChoice) InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool {
	desc := getStringDefault(c.Base, userChoiceDefs, "description", ws, u, "")
	if u == nil {
		return false
	}
	c.future = u.RequestChoice(desc, len(c.Children()))
	return true
}

func (c *UserChoice) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if c.ticking {
		return c.Children()[c.chosen].Tick(u, ws)
	}
	if c.future == nil || !c.future.IsReady() {
		return status.Running
	}
	idx, err := c.future.Get()
	if err != nil {
		return status.Failure
	}
	if idx < 0 || idx >= len(c.Children()) {
		return status.Failure
	}
	c.chosen = idx
	c.ticking = true
	return c.Children()[idx].Tick(u, ws)
}

func (c *UserChoice) HaltImpl() {
	if c.future != nil {
		c.future.Cancel()
	}
}

// Inverter swaps Success/Failure on the child's terminal status; it passes
// non-terminal statuses through unchanged.
type Inverter struct {
	*instr.Base
}

func newInverter(id string) instr.Instruction {
	i := &Inverter{}
	i.Base = instr.NewBase(i, id, "Inverter", nil, nil)
	return i
}

func (i *Inverter) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	child := i.Children()[0]
	st := child.Status()
	if !st.Terminal() {
		st = child.Tick(u, ws)
	}
	switch st {
	case status.Success:
		return status.Failure
	case status.Failure:
		return status.Success
	default:
		return st
	}
}

// ForceSuccess waits for its child to reach any terminal status, then
// reports Success regardless of which one it was.
type ForceSuccess struct {
	*instr.Base
}

func newForceSuccess(id string) instr.Instruction {
	f := &ForceSuccess{}
	f.Base = instr.NewBase(f, id, "ForceSuccess", nil, nil)
	return f
}

func (f *ForceSuccess) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	child := f.Children()[0]
	st := child.Status()
	if !st.Terminal() {
		st = child.Tick(u, ws)
	}
	if st.Terminal() {
		return status.Success
	}
	return st
}

func init() {
	registry.RegisterInstruction("Choice", newChoice)
	registry.RegisterInstruction("UserChoice", newUserChoice)
	registry.RegisterInstruction("Inverter", newInverter)
	registry.RegisterInstruction("ForceSuccess", newForceSuccess)
}
