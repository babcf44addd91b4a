package library

import (
	"strings"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var executeWhileDefs = []attribute.Definition{
	literalDef("varNames", attribute.TypeString, true),
}

// ExecuteWhile has exactly two children — action, condition. It subscribes
// to varNames and concurrently ticks action; on any listed-variable change
// it re-ticks condition, halting and failing the action the moment
// condition reports Failure. Success iff action completes with Success
// while condition has held throughout (§4.5).
type ExecuteWhile struct {
	*instr.Base
	handles []workspace.SubscriptionHandle
	signal  workspace.ChangeSignal
}

func newExecuteWhile(id string) instr.Instruction {
	e := &ExecuteWhile{}
	e.Base = instr.NewBase(e, id, "ExecuteWhile", executeWhileDefs, nil)
	return e
}

func (e *ExecuteWhile) InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool {
	raw, _ := e.Attributes().Raw("varNames")
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		e.handles = append(e.handles, ws.Subscribe(name, e.signal.NotifyListener))
	}
	return true
}

func (e *ExecuteWhile) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	action := e.Children()[0]
	condition := e.Children()[1]

	if e.Halted() {
		action.Halt()
		e.unsubscribe(ws)
		return status.Failure
	}

	if e.signal.Consume() {
		if condition.Status().Terminal() {
			condition.Reset(u)
		}
		if st := condition.Tick(u, ws); st == status.Failure {
			action.Halt()
			e.unsubscribe(ws)
			return status.Failure
		}
	}

	st := action.Tick(u, ws)
	if !st.Terminal() {
		return status.Running
	}
	e.unsubscribe(ws)
	return st
}

func (e *ExecuteWhile) unsubscribe(ws *workspace.Workspace) {
	for _, h := range e.handles {
		ws.Unsubscribe(h)
	}
	e.handles = nil
}

var waitForConditionDefs = []attribute.Definition{
	literalDef("varNames", attribute.TypeString, true),
	literalDef("timeout", attribute.TypeFloat, false),
}

// WaitForCondition has exactly one child — condition. It ticks condition
// immediately; if Success, returns Success without subscribing to
// anything. Otherwise it subscribes to varNames and re-ticks condition on
// every change until Success or timeout; Failure at timeout (§4.5).
type WaitForCondition struct {
	*instr.Base
	handles    []workspace.SubscriptionHandle
	signal     workspace.ChangeSignal
	subscribed bool
	dl         deadline
}

func newWaitForCondition(id string) instr.Instruction {
	w := &WaitForCondition{}
	w.Base = instr.NewBase(w, id, "WaitForCondition", waitForConditionDefs, nil)
	return w
}

func (w *WaitForCondition) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	condition := w.Children()[0]

	if w.Halted() {
		w.unsubscribe(ws)
		return status.Failure
	}

	if !w.subscribed {
		if st := condition.Tick(u, ws); st == status.Success {
			return status.Success
		}
		timeoutSecs := getFloatDefault(w.Base, waitForConditionDefs, "timeout", ws, u, 0)
		w.dl.arm(secondsToDuration(timeoutSecs))
		raw, _ := w.Attributes().Raw("varNames")
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			w.handles = append(w.handles, ws.Subscribe(name, w.signal.NotifyListener))
		}
		w.subscribed = true
		return status.Running
	}

	if w.signal.Consume() {
		if condition.Status().Terminal() {
			condition.Reset(u)
		}
		if st := condition.Tick(u, ws); st == status.Success {
			w.unsubscribe(ws)
			return status.Success
		}
	}
	if w.dl.expired() {
		w.unsubscribe(ws)
		return status.Failure
	}
	return status.Running
}

func (w *WaitForCondition) unsubscribe(ws *workspace.Workspace) {
	for _, h := range w.handles {
		ws.Unsubscribe(h)
	}
	w.handles = nil
}

func init() {
	registry.RegisterInstruction("ExecuteWhile", newExecuteWhile)
	registry.RegisterInstruction("WaitForCondition", newWaitForCondition)
}
