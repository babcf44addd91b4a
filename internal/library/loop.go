package library

import (
	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var forDefs = []attribute.Definition{
	varNameDef("elementVar", true),
	varNameDef("arrayVar", true),
}

// For reads the array from arrayVar and, for each element, copies it into
// elementVar and ticks the single child to completion (resetting between
// elements); the source array is never mutated (§4.5).
type For struct {
	*instr.Base
	elements []interface{}
	index    int
	started  bool
}

func newFor(id string) instr.Instruction {
	f := &For{}
	f.Base = instr.NewBase(f, id, "For", forDefs, nil)
	return f
}

func (f *For) InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool {
	arrName, _ := f.Attributes().Raw("arrayVar")
	v, ok := ws.GetValue(arrName, "")
	if !ok || !v.IsArray() {
		logf(u, ui.Error, "For: arrayVar is not a readable array")
		return false
	}
	items, _ := v.Raw().([]interface{})
	f.elements = make([]interface{}, len(items))
	copy(f.elements, items)
	f.started = true
	return true
}

func (f *For) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if f.index >= len(f.elements) {
		return status.Success
	}
	elementVar, _ := f.Attributes().Raw("elementVar")
	child := f.Children()[0]

	if child.Status() == status.NotStarted {
		ws.SetValue(elementVar, "", value.New("", f.elements[f.index]))
	}

	st := child.Tick(u, ws)
	switch st {
	case status.Success:
		f.index++
		if f.index >= len(f.elements) {
			return status.Success
		}
		child.Reset(u)
		return status.NotFinished
	case status.Failure:
		return status.Failure
	default:
		return st
	}
}

var repeatDefs = []attribute.Definition{literalDef("maxCount", attribute.TypeInt, false)}

// Repeat ticks its single child to Success up to maxCount times (-1 =
// unbounded), resetting it between successes; a Failure short-circuits.
type Repeat struct {
	*instr.Base
	successes int
}

func newRepeat(id string) instr.Instruction {
	r := &Repeat{}
	r.Base = instr.NewBase(r, id, "Repeat", repeatDefs, nil)
	return r
}

func (r *Repeat) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	maxCount := getIntDefault(r.Base, repeatDefs, "maxCount", ws, u, 1)
	child := r.Children()[0]

	st := child.Tick(u, ws)
	switch st {
	case status.Success:
		r.successes++
		if maxCount >= 0 && r.successes >= maxCount {
			return status.Success
		}
		child.Reset(u)
		return status.NotFinished
	case status.Failure:
		return status.Failure
	default:
		return st
	}
}

func init() {
	registry.RegisterInstruction("For", newFor)
	registry.RegisterInstruction("Repeat", newRepeat)
}
