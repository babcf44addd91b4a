package library

import (
	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var conditionDefs = []attribute.Definition{varNameDef("varName", true)}

// Condition reads varName and coerces it to boolean using the lexical
// rules of §4.5 (integer 0/non-zero, float NaN/0.0/else, non-empty
// string, structures fail). Returns Success iff true.
type Condition struct {
	*instr.Base
}

func newCondition(id string) instr.Instruction {
	c := &Condition{}
	c.Base = instr.NewBase(c, id, "Condition", conditionDefs, nil)
	return c
}

func (c *Condition) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	v, ok := getValue(c.Base, conditionDefs, "varName", ws, u)
	if !ok {
		logf(u, ui.Error, "Condition: varName unavailable")
		return status.Failure
	}
	b, ok := v.AsBool()
	if !ok {
		logf(u, ui.Error, "Condition: value is not coercible to boolean")
		return status.Failure
	}
	if b {
		return status.Success
	}
	return status.Failure
}

var varExistsDefs = []attribute.Definition{varNameDef("varName", true)}

// VarExists succeeds iff the named variable is present in the workspace.
type VarExists struct {
	*instr.Base
}

func newVarExists(id string) instr.Instruction {
	v := &VarExists{}
	v.Base = instr.NewBase(v, id, "VarExists", varExistsDefs, nil)
	return v
}

func (v *VarExists) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	name, _ := v.Attributes().Raw("varName")
	if _, ok := ws.Variable(name); ok {
		return status.Success
	}
	return status.Failure
}

func init() {
	registry.RegisterInstruction("Condition", newCondition)
	registry.RegisterInstruction("VarExists", newVarExists)
}
