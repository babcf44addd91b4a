package library

import (
	"time"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func secondsToDuration(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

var waitDefs = []attribute.Definition{
	literalDef("timeout", attribute.TypeFloat, false),
}

// Wait records a monotonic deadline on the first tick after init and
// returns Running until it elapses; a missing or zero timeout succeeds
// immediately (§4.5).
type Wait struct {
	*instr.Base
	dl deadline
}

func newWait(id string) instr.Instruction {
	w := &Wait{}
	w.Base = instr.NewBase(w, id, "Wait", waitDefs, nil)
	return w
}

func (w *Wait) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if w.Halted() {
		return status.Failure
	}
	timeoutSecs := getFloatDefault(w.Base, waitDefs, "timeout", ws, u, 0)
	if !w.dl.set {
		w.dl.arm(secondsToDuration(timeoutSecs))
		if timeoutSecs <= 0 {
			return status.Success
		}
	}
	if w.dl.expired() {
		return status.Success
	}
	return status.Running
}

var waitForVariableDefs = []attribute.Definition{
	literalDef("timeout", attribute.TypeFloat, false),
	varNameDef("varName", true),
	varNameDef("equalsVar", false),
}

// WaitForVariable subscribes to varName and succeeds as soon as it is
// readable and non-empty (and, if equalsVar is given, equal to it);
// Failure at the deadline (§4.5).
type WaitForVariable struct {
	*instr.Base
	dl      deadline
	handle  workspace.SubscriptionHandle
	watched bool
}

func newWaitForVariable(id string) instr.Instruction {
	w := &WaitForVariable{}
	w.Base = instr.NewBase(w, id, "WaitForVariable", waitForVariableDefs, nil)
	return w
}

func (w *WaitForVariable) InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool {
	varName, _ := w.Attributes().Raw("varName")
	w.handle = ws.Subscribe(varName, func(string, value.Value, bool) {})
	w.watched = true
	return true
}

func (w *WaitForVariable) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if w.Halted() {
		w.stopWatching(ws)
		return status.Failure
	}
	timeoutSecs := getFloatDefault(w.Base, waitForVariableDefs, "timeout", ws, u, 0)
	w.dl.arm(secondsToDuration(timeoutSecs))

	varName, _ := w.Attributes().Raw("varName")
	v, ok := ws.GetValue(varName, "")
	if ok && !v.IsEmpty() {
		satisfied := true
		if equalsVar, present := w.Attributes().Raw("equalsVar"); present && equalsVar != "" {
			ref, refOK := ws.GetValue(equalsVar, "")
			eq, cmpOK := value.Equal(v, ref)
			satisfied = refOK && cmpOK && eq
		}
		if satisfied {
			w.stopWatching(ws)
			return status.Success
		}
	}
	if w.dl.expired() {
		w.stopWatching(ws)
		return status.Failure
	}
	return status.Running
}

func (w *WaitForVariable) stopWatching(ws *workspace.Workspace) {
	if w.watched {
		ws.Unsubscribe(w.handle)
		w.watched = false
	}
}

var waitForVariablesDefs = []attribute.Definition{
	literalDef("timeout", attribute.TypeFloat, false),
	literalDef("varType", attribute.TypeString, true),
}

// WaitForVariables succeeds once every workspace variable of the given
// type is available (§4.5).
type WaitForVariables struct {
	*instr.Base
	dl deadline
}

func newWaitForVariables(id string) instr.Instruction {
	w := &WaitForVariables{}
	w.Base = instr.NewBase(w, id, "WaitForVariables", waitForVariablesDefs, nil)
	return w
}

func (w *WaitForVariables) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if w.Halted() {
		return status.Failure
	}
	timeoutSecs := getFloatDefault(w.Base, waitForVariablesDefs, "timeout", ws, u, 0)
	w.dl.arm(secondsToDuration(timeoutSecs))

	varType, _ := w.Attributes().Raw("varType")
	allAvailable := true
	for _, name := range ws.Names() {
		v, ok := ws.Variable(name)
		if !ok || v.TypeName() != varType {
			continue
		}
		if !v.Available() {
			allAvailable = false
			break
		}
	}
	if allAvailable {
		return status.Success
	}
	if w.dl.expired() {
		return status.Failure
	}
	return status.Running
}

func init() {
	registry.RegisterInstruction("Wait", newWait)
	registry.RegisterInstruction("WaitForVariable", newWaitForVariable)
	registry.RegisterInstruction("WaitForVariables", newWaitForVariables)
}
