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

var listenDefs = []attribute.Definition{
	literalDef("varNames", attribute.TypeString, true),
	literalDef("forceSuccess", attribute.TypeBool, false),
}

// Listen subscribes to a comma-separated list of variables and does not
// tick its single child until the first post-subscription change arrives;
// from then on, every change resets a terminal child and ticks it again,
// while a child already mid-flight keeps being ticked every outer tick
// regardless of further changes. With forceSuccess, a child Success means
// "reset and keep listening for the next change"; only Failure terminates.
// Without it, any terminal child status terminates the listener (§4.5).
type Listen struct {
	*instr.Base
	handles []workspace.SubscriptionHandle
	signal  workspace.ChangeSignal
}

func newListen(id string) instr.Instruction {
	l := &Listen{}
	l.Base = instr.NewBase(l, id, "Listen", listenDefs, nil)
	return l
}

func (l *Listen) InitImpl(u ui.UserInterface, ws *workspace.Workspace) bool {
	raw, _ := l.Attributes().Raw("varNames")
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		l.handles = append(l.handles, ws.Subscribe(name, l.signal.NotifyListener))
	}
	return true
}

func (l *Listen) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if l.Halted() {
		l.unsubscribe(ws)
		return status.Failure
	}

	forceSuccess := getBoolDefault(l.Base, listenDefs, "forceSuccess", ws, u, false)
	child := l.Children()[0]
	changed := l.signal.Consume()

	if child.Status() == status.NotStarted && !changed {
		return status.Running
	}
	if changed && child.Status().Terminal() {
		child.Reset(u)
	}

	st := child.Tick(u, ws)
	if !st.Terminal() {
		return status.Running
	}

	if forceSuccess {
		if st == status.Failure {
			l.unsubscribe(ws)
			return status.Failure
		}
		child.Reset(u)
		return status.Running
	}

	l.unsubscribe(ws)
	return st
}

func (l *Listen) unsubscribe(ws *workspace.Workspace) {
	for _, h := range l.handles {
		ws.Unsubscribe(h)
	}
	l.handles = nil
}

func init() {
	registry.RegisterInstruction("Listen", newListen)
}
