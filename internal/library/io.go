package library

import (
	"fmt"

	"github.com/ternarybob/oaktree/internal/attribute"
	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

var inputDefs = []attribute.Definition{
	varNameDef("outputVar", true),
	literalDef("description", attribute.TypeString, false),
}

// Input requests a value via an async UI future, polling it non-blockingly
// across ticks and writing the result to outputVar once ready (§4.5, §4.6:
// the future is the only suspension primitive offered to instructions).
type Input struct {
	*instr.Base
	future ui.Future[value.Value]
}

func newInput(id string) instr.Instruction {
	i := &Input{}
	i.Base = instr.NewBase(i, id, "Input", inputDefs, nil)
	return i
}

func (i *Input) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if i.Halted() {
		if i.future != nil {
			i.future.Cancel()
		}
		return status.Failure
	}
	if i.future == nil {
		description := getStringDefault(i.Base, inputDefs, "description", ws, u, "")
		i.future = u.RequestInput(description)
	}
	if !i.future.IsReady() {
		return status.Running
	}
	v, err := i.future.Get()
	if err != nil {
		logf(u, ui.Error, err.Error())
		return status.Failure
	}
	outputName, _ := i.Attributes().Raw("outputVar")
	if !ws.SetValue(outputName, "", v) {
		return status.Failure
	}
	return status.Success
}

var outputDefs = []attribute.Definition{
	{Name: "text", Type: attribute.TypeString, Category: attribute.Both, Mandatory: true},
}

// Output is a one-way notification to the user interface (§4.5, §4.6).
type Output struct{ *instr.Base }

func newOutput(id string) instr.Instruction {
	o := &Output{}
	o.Base = instr.NewBase(o, id, "Output", outputDefs, nil)
	return o
}

func (o *Output) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	text := resolveText(o.Base, outputDefs, ws, u)
	u.Message(text)
	return status.Success
}

var messageDefs = outputDefs

// Message is an alias for Output, kept distinct to match the spec's
// vocabulary (§4.5 lists both names as one-way notifications).
type Message struct{ *instr.Base }

func newMessage(id string) instr.Instruction {
	m := &Message{}
	m.Base = instr.NewBase(m, id, "Message", messageDefs, nil)
	return m
}

func (m *Message) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	text := resolveText(m.Base, messageDefs, ws, u)
	u.Message(text)
	return status.Success
}

func resolveText(b *instr.Base, defs []attribute.Definition, ws *workspace.Workspace, u ui.UserInterface) string {
	v, ok := getValue(b, defs, "text", ws, u)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

var logDefs = []attribute.Definition{
	literalDef("severity", attribute.TypeString, false),
	{Name: "text", Type: attribute.TypeString, Category: attribute.Both, Mandatory: true},
}

// Log writes to the user interface at a severity drawn from a closed set
// of nine levels; an unknown severity fails at Setup rather than at tick
// time (§4.5).
type Log struct {
	*instr.Base
	severity ui.Severity
}

func newLog(id string) instr.Instruction {
	l := &Log{}
	l.Base = instr.NewBase(l, id, "Log", logDefs, nil)
	return l
}

func (l *Log) SetupImpl(ctx *instr.SetupContext) error {
	raw, present := l.Attributes().Raw("severity")
	if !present || raw == "" {
		l.severity = ui.Info
		return nil
	}
	if !ui.ValidSeverity(raw) {
		return fmt.Errorf("Log: unknown severity %q", raw)
	}
	l.severity = ui.Severity(raw)
	return nil
}

func (l *Log) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	text := resolveText(l.Base, logDefs, ws, u)
	u.Log(l.severity, text)
	return status.Success
}

var userConfirmationDefs = []attribute.Definition{
	literalDef("description", attribute.TypeString, true),
	literalDef("okText", attribute.TypeString, false),
	literalDef("cancelText", attribute.TypeString, false),
}

// UserConfirmation is an async UI prompt: Success on confirm, Failure on
// reject or halt (§4.5).
type UserConfirmation struct {
	*instr.Base
	future ui.Future[ui.Confirmation]
}

func newUserConfirmation(id string) instr.Instruction {
	c := &UserConfirmation{}
	c.Base = instr.NewBase(c, id, "UserConfirmation", userConfirmationDefs, nil)
	return c
}

func (c *UserConfirmation) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	if c.Halted() {
		if c.future != nil {
			c.future.Cancel()
		}
		return status.Failure
	}
	if c.future == nil {
		description := getStringDefault(c.Base, userConfirmationDefs, "description", ws, u, "")
		okText := getStringDefault(c.Base, userConfirmationDefs, "okText", ws, u, "")
		cancelText := getStringDefault(c.Base, userConfirmationDefs, "cancelText", ws, u, "")
		c.future = u.RequestConfirmation(description, okText, cancelText)
	}
	if !c.future.IsReady() {
		return status.Running
	}
	result, err := c.future.Get()
	if err != nil || result != ui.Confirmed {
		return status.Failure
	}
	return status.Success
}

func init() {
	registry.RegisterInstruction("Input", newInput)
	registry.RegisterInstruction("Output", newOutput)
	registry.RegisterInstruction("Message", newMessage)
	registry.RegisterInstruction("Log", newLog)
	registry.RegisterInstruction("UserConfirmation", newUserConfirmation)
}
