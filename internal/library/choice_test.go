package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func TestChoice_TicksOnlySelectedChildrenInOrder(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	indices := []interface{}{int64(1), int64(0)}
	require.NoError(t, ws.AddVariable("picks", workspace.NewLocalVariable(value.New("", indices))))
	require.NoError(t, ws.SetupAll())

	c, err := registry.NewInstruction("Choice", "c")
	require.NoError(t, err)
	c.Attributes().Set("varName", "picks")

	a := newFixed("a", status.Success)
	b := newFixed("b", status.Success)
	c.AddChild(a)
	c.AddChild(b)

	assert.Equal(t, status.Success, c.Tick(ui.Base{}, ws))
}

func TestChoice_OutOfRangeIndexFails(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("picks", workspace.NewLocalVariable(value.New("", int64(5)))))
	require.NoError(t, ws.SetupAll())

	c, err := registry.NewInstruction("Choice", "c")
	require.NoError(t, err)
	c.Attributes().Set("varName", "picks")
	c.AddChild(newFixed("a", status.Success))

	assert.Equal(t, status.Failure, c.Tick(ui.Base{}, ws))
}

func TestChoice_FailingSelectedChildFailsTheWhole(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("picks", workspace.NewLocalVariable(value.New("", int64(0)))))
	require.NoError(t, ws.SetupAll())

	c, err := registry.NewInstruction("Choice", "c")
	require.NoError(t, err)
	c.Attributes().Set("varName", "picks")
	c.AddChild(newFixed("a", status.Failure))

	assert.Equal(t, status.Failure, c.Tick(ui.Base{}, ws))
}

func TestInverter_SwapsTerminalStatus(t *testing.T) {
	inv, err := registry.NewInstruction("Inverter", "inv")
	require.NoError(t, err)
	inv.AddChild(newFixed("a", status.Success))
	assert.Equal(t, status.Failure, inv.Tick(ui.Base{}, nil))

	inv2, err := registry.NewInstruction("Inverter", "inv2")
	require.NoError(t, err)
	inv2.AddChild(newFixed("a", status.Failure))
	assert.Equal(t, status.Success, inv2.Tick(ui.Base{}, nil))
}

func TestInverter_PassesThroughRunning(t *testing.T) {
	inv, err := registry.NewInstruction("Inverter", "inv")
	require.NoError(t, err)
	inv.AddChild(newFixed("a", status.Running))
	assert.Equal(t, status.Running, inv.Tick(ui.Base{}, nil))
}

func TestForceSuccess_AlwaysSucceedsOnceTerminal(t *testing.T) {
	fs, err := registry.NewInstruction("ForceSuccess", "fs")
	require.NoError(t, err)
	fs.AddChild(newFixed("a", status.Failure))
	assert.Equal(t, status.Success, fs.Tick(ui.Base{}, nil))
}

func TestForceSuccess_PropagatesNonTerminal(t *testing.T) {
	fs, err := registry.NewInstruction("ForceSuccess", "fs")
	require.NoError(t, err)
	fs.AddChild(newFixed("a", status.Running))
	assert.Equal(t, status.Running, fs.Tick(ui.Base{}, nil))
}

func TestUserChoice_NoAttachedUIFailsImmediately(t *testing.T) {
	uc, err := registry.NewInstruction("UserChoice", "uc")
	require.NoError(t, err)
	uc.AddChild(newFixed("a", status.Success))
	uc.AddChild(newFixed("b", status.Success))

	require.NoError(t, uc.Setup(nil))
	assert.Equal(t, status.Failure, uc.Tick(ui.Base{}, nil))
}

func TestUserChoice_ResolvedChoiceTicksSelectedChild(t *testing.T) {
	pu := newPromptUI()
	uc, err := registry.NewInstruction("UserChoice", "uc")
	require.NoError(t, err)
	uc.AddChild(newFixed("a", status.Success))
	uc.AddChild(newFixed("b", status.Failure))

	require.NoError(t, uc.Setup(nil))
	st := uc.Tick(pu, nil)
	assert.Equal(t, status.Running, st)

	pu.choice.Resolve(1)
	st = uc.Tick(pu, nil)
	assert.Equal(t, status.Failure, st)
}
