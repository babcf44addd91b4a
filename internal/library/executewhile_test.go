package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func TestExecuteWhile_SucceedsWhenActionFinishesAndConditionHolds(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("guard", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	e, err := registry.NewInstruction("ExecuteWhile", "e")
	require.NoError(t, err)
	e.Attributes().Set("varNames", "guard")
	e.AddChild(newFixed("action", status.Success))
	e.AddChild(newFixed("condition", status.Success))

	st := e.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Success, st)
}

func TestExecuteWhile_ConditionFailureOnChangeHaltsAction(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("guard", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	e, err := registry.NewInstruction("ExecuteWhile", "e")
	require.NoError(t, err)
	e.Attributes().Set("varNames", "guard")
	action := newFixed("action", status.Running)
	e.AddChild(action)
	e.AddChild(newFixed("condition", status.Failure))

	st := e.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Running, st, "no change yet, condition has not been re-checked")

	ws.SetValue("guard", "", value.New("", "changed"))
	st = e.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Failure, st)
	assert.True(t, action.Halted())
}

func TestExecuteWhile_HaltPropagatesToAction(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("guard", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	e, err := registry.NewInstruction("ExecuteWhile", "e")
	require.NoError(t, err)
	e.Attributes().Set("varNames", "guard")
	action := newFixed("action", status.Running)
	e.AddChild(action)
	e.AddChild(newFixed("condition", status.Success))

	e.Tick(ui.Base{}, ws)
	e.Halt()
	st := e.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Failure, st)
	assert.True(t, action.Halted())
}

func TestWaitForCondition_ImmediateSuccessSkipsSubscription(t *testing.T) {
	w, err := registry.NewInstruction("WaitForCondition", "w")
	require.NoError(t, err)
	w.Attributes().Set("varNames", "guard")
	w.AddChild(newFixed("condition", status.Success))

	st := w.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Success, st)
}

func TestWaitForCondition_SucceedsOnVariableChange(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("guard", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	w, err := registry.NewInstruction("WaitForCondition", "w")
	require.NoError(t, err)
	w.Attributes().Set("varNames", "guard")
	condition := newFixed("condition", status.Failure)
	w.AddChild(condition)

	st := w.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Running, st)

	condition.(*fixedNode).result = status.Success
	ws.SetValue("guard", "", value.New("", "go"))
	st = w.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Success, st)
}

func TestWaitForCondition_TimesOutToFailure(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("guard", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	w, err := registry.NewInstruction("WaitForCondition", "w")
	require.NoError(t, err)
	w.Attributes().Set("varNames", "guard")
	w.Attributes().Set("timeout", "0.05")
	w.AddChild(newFixed("condition", status.Failure))

	w.Tick(ui.Base{}, ws)
	time.Sleep(80 * time.Millisecond)
	st := w.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Failure, st)
}
