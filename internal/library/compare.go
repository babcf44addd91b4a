package library

import (
	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/errs"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var compareDefs = []attribute.Definition{
	{Name: "lhs", Type: attribute.TypeString, Category: attribute.Both, Mandatory: true},
	{Name: "rhs", Type: attribute.TypeString, Category: attribute.Both, Mandatory: true},
}

type compareOp int

const (
	opEquals compareOp = iota
	opGreaterThan
	opGreaterThanOrEqual
	opLessThan
	opLessThanOrEqual
)

// compare is the shared implementation behind Equals and the four ordering
// instructions: resolve lhs/rhs (literal or variable, per attribute
// category), coerce and compare, and fail (not error) on incomparable
// operands (§4.5).
type compare struct {
	*instr.Base
	op compareOp
}

func newCompare(id, typeName string, op compareOp) instr.Instruction {
	c := &compare{op: op}
	c.Base = instr.NewBase(c, id, typeName, compareDefs, nil)
	return c
}

func (c *compare) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	lhs, ok := getValue(c.Base, compareDefs, "lhs", ws, u)
	if !ok {
		return status.Failure
	}
	rhs, ok := getValue(c.Base, compareDefs, "rhs", ws, u)
	if !ok {
		return status.Failure
	}

	if c.op == opEquals {
		eq, ok := value.Equal(lhs, rhs)
		if !ok {
			logf(u, ui.Error, errs.TypeMismatch.Error())
			return status.Failure
		}
		if eq {
			return status.Success
		}
		return status.Failure
	}

	cmp, ok := value.Compare(lhs, rhs)
	if !ok {
		logf(u, ui.Error, errs.TypeMismatch.Error())
		return status.Failure
	}

	var pass bool
	switch c.op {
	case opGreaterThan:
		pass = cmp > 0
	case opGreaterThanOrEqual:
		pass = cmp >= 0
	case opLessThan:
		pass = cmp < 0
	case opLessThanOrEqual:
		pass = cmp <= 0
	}
	if pass {
		return status.Success
	}
	return status.Failure
}

func init() {
	registry.RegisterInstruction("Equals", func(id string) instr.Instruction { return newCompare(id, "Equals", opEquals) })
	registry.RegisterInstruction("GreaterThan", func(id string) instr.Instruction { return newCompare(id, "GreaterThan", opGreaterThan) })
	registry.RegisterInstruction("GreaterThanOrEqual", func(id string) instr.Instruction { return newCompare(id, "GreaterThanOrEqual", opGreaterThanOrEqual) })
	registry.RegisterInstruction("LessThan", func(id string) instr.Instruction { return newCompare(id, "LessThan", opLessThan) })
	registry.RegisterInstruction("LessThanOrEqual", func(id string) instr.Instruction { return newCompare(id, "LessThanOrEqual", opLessThanOrEqual) })
}
