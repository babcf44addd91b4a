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

var addElementDefs = []attribute.Definition{
	varNameDef("inputVar", true),
	varNameDef("outputVar", true),
}

// AddElement appends the input value as a new element to the array at
// outputVar. An empty outputVar starts a new array; any other non-array
// data in outputVar fails. The element's type is not checked.
type AddElement struct{ *instr.Base }

func newAddElement(id string) instr.Instruction {
	a := &AddElement{}
	a.Base = instr.NewBase(a, id, "AddElement", addElementDefs, nil)
	return a
}

func (a *AddElement) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	inputName, _ := a.Attributes().Raw("inputVar")
	outputName, _ := a.Attributes().Raw("outputVar")
	in, ok := ws.GetValue(inputName, "")
	if !ok {
		return status.Failure
	}
	cur, _ := ws.GetValue(outputName, "")
	updated, ok := value.AppendElement(cur, in)
	if !ok {
		logf(u, ui.Error, errs.TypeMismatch.Error())
		return status.Failure
	}
	if !ws.SetValue(outputName, "", updated) {
		return status.Failure
	}
	return status.Success
}

var addMemberDefs = []attribute.Definition{
	varNameDef("inputVar", true),
	literalDef("varName", attribute.TypeString, true),
	varNameDef("outputVar", true),
}

// AddMember adds a new named field to the structure at outputVar, sourced
// from inputVar. Fails if outputVar is sealed (e.g. an array element).
type AddMember struct{ *instr.Base }

func newAddMember(id string) instr.Instruction {
	a := &AddMember{}
	a.Base = instr.NewBase(a, id, "AddMember", addMemberDefs, nil)
	return a
}

func (a *AddMember) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	inputName, _ := a.Attributes().Raw("inputVar")
	outputName, _ := a.Attributes().Raw("outputVar")
	fieldName, _ := a.Attributes().Raw("varName")
	in, ok := ws.GetValue(inputName, "")
	if !ok {
		return status.Failure
	}
	cur, _ := ws.GetValue(outputName, "")
	updated, ok := value.WithMember(cur, fieldName, in)
	if !ok {
		logf(u, ui.Error, "AddMember: output is sealed")
		return status.Failure
	}
	if !ws.SetValue(outputName, "", updated) {
		return status.Failure
	}
	return status.Success
}

var copyDefs = []attribute.Definition{
	varNameDef("inputVar", true),
	varNameDef("outputVar", true),
}

// Copy assigns inputVar's value to outputVar.
type Copy struct{ *instr.Base }

func newCopy(id string) instr.Instruction {
	c := &Copy{}
	c.Base = instr.NewBase(c, id, "Copy", copyDefs, nil)
	return c
}

func (c *Copy) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	inputName, _ := c.Attributes().Raw("inputVar")
	outputName, _ := c.Attributes().Raw("outputVar")
	v, ok := ws.GetValue(inputName, "")
	if !ok {
		return status.Failure
	}
	if !ws.SetValue(outputName, "", v) {
		return status.Failure
	}
	return status.Success
}

var resetVariableDefs = []attribute.Definition{varNameDef("varName", true)}

// ResetVariable clears the named variable back to its empty value.
type ResetVariable struct{ *instr.Base }

func newResetVariable(id string) instr.Instruction {
	r := &ResetVariable{}
	r.Base = instr.NewBase(r, id, "ResetVariable", resetVariableDefs, nil)
	return r
}

func (r *ResetVariable) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	name, _ := r.Attributes().Raw("varName")
	if !ws.SetValue(name, "", value.Empty()) {
		return status.Failure
	}
	return status.Success
}

func newIncrDecr(id, typeName string, sign int64) instr.Instruction {
	s := &incrDecr{sign: sign}
	s.Base = instr.NewBase(s, id, typeName, resetVariableDefs, nil)
	return s
}

// incrDecr implements Increment (sign=+1) and Decrement (sign=-1).
// Overflow is implementation-defined but must never panic: both directions
// saturate and report Failure rather than wrapping.
type incrDecr struct {
	*instr.Base
	sign int64
}

func (s *incrDecr) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	name, _ := s.Attributes().Raw("varName")
	v, ok := ws.GetValue(name, "")
	if !ok {
		return status.Failure
	}
	i, ok := v.AsInt64()
	if !ok {
		logf(u, ui.Error, errs.TypeMismatch.Error())
		return status.Failure
	}
	next := i + s.sign
	if (s.sign > 0 && next < i) || (s.sign < 0 && next > i) {
		logf(u, ui.Error, "overflow")
		return status.Failure
	}
	if !ws.SetValue(name, "", value.New(v.TypeName(), next)) {
		return status.Failure
	}
	return status.Success
}

func init() {
	registry.RegisterInstruction("AddElement", newAddElement)
	registry.RegisterInstruction("AddMember", newAddMember)
	registry.RegisterInstruction("Copy", newCopy)
	registry.RegisterInstruction("ResetVariable", newResetVariable)
	registry.RegisterInstruction("Increment", func(id string) instr.Instruction { return newIncrDecr(id, "Increment", 1) })
	registry.RegisterInstruction("Decrement", func(id string) instr.Instruction { return newIncrDecr(id, "Decrement", -1) })
}
