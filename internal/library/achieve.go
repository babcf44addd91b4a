package library

import (
	"fmt"
	"strings"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

// AchieveCondition has exactly two children — condition, action. It ticks
// condition first; if already Success, it returns Success without ever
// touching the action. Otherwise it ticks the action, racing a concurrent
// condition re-check on every tick while the action is Running: the moment
// condition reports Success mid-action, the action is halted and Success
// is returned. Once the action terminates on its own, condition is ticked
// one final time and its result adopted (§4.5).
type AchieveCondition struct {
	*instr.Base
}

func newAchieveCondition(id string) instr.Instruction {
	a := &AchieveCondition{}
	a.Base = instr.NewBase(a, id, "AchieveCondition", nil, nil)
	return a
}

func (a *AchieveCondition) SetupImpl(ctx *instr.SetupContext) error {
	if n := len(a.Children()); n != 2 {
		return fmt.Errorf("AchieveCondition: expects exactly two children (condition, action), got %d", n)
	}
	return nil
}

func (a *AchieveCondition) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return tickAchieve(a.Base, u, ws)
}

// tickAchieve is shared by AchieveCondition and the two variants below, all
// of which embed the same condition/action racing logic and differ only in
// what happens once the base form would have returned. AchieveCondition and
// AchieveConditionWithTimeout always have two children (condition, action);
// AchieveConditionWithOverride additionally allows the action to be omitted
// (§4.5: "one or two children"), in which case the condition's own result
// is adopted directly, with no action ever ticked.
func tickAchieve(b *instr.Base, u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	children := b.Children()
	cond := children[0]

	if len(children) < 2 {
		return cond.Tick(u, ws)
	}

	if !cond.Status().Terminal() {
		if st := cond.Tick(u, ws); st == status.Success {
			return status.Success
		}
	}

	action := children[1]
	actionStatus := action.Tick(u, ws)
	if !actionStatus.Terminal() {
		if cond.Status().Terminal() {
			cond.Reset(u)
		}
		condStatus := cond.Tick(u, ws)
		if condStatus == status.Success {
			action.Halt()
			return status.Success
		}
		return status.Running
	}

	if cond.Status().Terminal() {
		cond.Reset(u)
	}
	return cond.Tick(u, ws)
}

// AchieveConditionWithOverride behaves like AchieveCondition but, when the
// final condition check is Failure, issues a 3-way Retry/Override/Abort
// user prompt before settling: Retry resets the whole subtree and starts
// over, Override forces Success, Abort forces Failure (§4.5).
type AchieveConditionWithOverride struct {
	*instr.Base
	future ui.Future[int]
}

func newAchieveConditionWithOverride(id string) instr.Instruction {
	a := &AchieveConditionWithOverride{}
	a.Base = instr.NewBase(a, id, "AchieveConditionWithOverride", nil, nil)
	return a
}

func (a *AchieveConditionWithOverride) SetupImpl(ctx *instr.SetupContext) error {
	if n := len(a.Children()); n != 1 && n != 2 {
		return fmt.Errorf("AchieveConditionWithOverride: expects one or two children (condition[, action]), got %d", n)
	}
	return nil
}

func (a *AchieveConditionWithOverride) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if a.future != nil {
		return a.pollPrompt(u, ws)
	}

	result := tickAchieve(a.Base, u, ws)
	if result != status.Failure {
		return result
	}

	a.future = u.RequestChoice("AchieveConditionWithOverride: condition failed", 3)
	return status.Running
}

func (a *AchieveConditionWithOverride) pollPrompt(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if !a.future.IsReady() {
		return status.Running
	}
	choice, err := a.future.Get()
	a.future = nil
	if err != nil {
		return status.Failure
	}
	switch choice {
	case 0: // Retry
		for _, c := range a.Children() {
			c.Reset(u)
		}
		return status.Running
	case 1: // Override
		return status.Success
	default: // Abort
		return status.Failure
	}
}

var achieveConditionWithTimeoutDefs = []attribute.Definition{
	literalDef("varNames", attribute.TypeString, true),
	literalDef("timeout", attribute.TypeFloat, false),
}

type achieveTimeoutPhase int

const (
	phaseRacing achieveTimeoutPhase = iota
	phaseWaiting
)

// AchieveConditionWithTimeout behaves like AchieveCondition, except that
// once the action completes it subscribes to varNames and re-ticks the
// condition on every change (rather than giving up after one final check),
// up to timeout; Failure on timeout (§4.5).
type AchieveConditionWithTimeout struct {
	*instr.Base
	phase   achieveTimeoutPhase
	dl      deadline
	signal  workspace.ChangeSignal
	handles []workspace.SubscriptionHandle
}

func newAchieveConditionWithTimeout(id string) instr.Instruction {
	a := &AchieveConditionWithTimeout{}
	a.Base = instr.NewBase(a, id, "AchieveConditionWithTimeout", achieveConditionWithTimeoutDefs, nil)
	return a
}

func (a *AchieveConditionWithTimeout) SetupImpl(ctx *instr.SetupContext) error {
	if n := len(a.Children()); n != 2 {
		return fmt.Errorf("AchieveConditionWithTimeout: expects exactly two children (condition, action), got %d", n)
	}
	return nil
}

func (a *AchieveConditionWithTimeout) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if a.phase == phaseWaiting {
		return a.tickWaiting(u, ws)
	}

	result := tickAchieve(a.Base, u, ws)
	if result == status.Failure {
		a.startWaiting(ws, u)
		return status.Running
	}
	return result
}

func (a *AchieveConditionWithTimeout) startWaiting(ws *workspace.Workspace, u ui.UserInterface) {
	a.phase = phaseWaiting
	timeoutSecs := getFloatDefault(a.Base, achieveConditionWithTimeoutDefs, "timeout", ws, u, 0)
	a.dl.arm(secondsToDuration(timeoutSecs))
	raw, _ := a.Attributes().Raw("varNames")
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		a.handles = append(a.handles, ws.Subscribe(name, a.signal.NotifyListener))
	}
}

func (a *AchieveConditionWithTimeout) tickWaiting(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	cond := a.Children()[0]
	if a.signal.Consume() {
		cond.Reset(u)
		if st := cond.Tick(u, ws); st == status.Success {
			a.stopWaiting(ws)
			return status.Success
		}
	}
	if a.dl.expired() {
		a.stopWaiting(ws)
		return status.Failure
	}
	return status.Running
}

func (a *AchieveConditionWithTimeout) stopWaiting(ws *workspace.Workspace) {
	for _, h := range a.handles {
		ws.Unsubscribe(h)
	}
	a.handles = nil
}

func init() {
	registry.RegisterInstruction("AchieveCondition", newAchieveCondition)
	registry.RegisterInstruction("AchieveConditionWithOverride", newAchieveConditionWithOverride)
	registry.RegisterInstruction("AchieveConditionWithTimeout", newAchieveConditionWithTimeout)
}
