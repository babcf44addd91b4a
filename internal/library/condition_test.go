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

func TestCondition_TrueVariableSucceeds(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("flag", workspace.NewLocalVariable(value.New("", true))))
	require.NoError(t, ws.SetupAll())

	c, err := registry.NewInstruction("Condition", "c")
	require.NoError(t, err)
	c.Attributes().Set("varName", "flag")

	assert.Equal(t, status.Success, c.Tick(ui.Base{}, ws))
}

func TestCondition_FalseVariableFails(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("flag", workspace.NewLocalVariable(value.New("", false))))
	require.NoError(t, ws.SetupAll())

	c, err := registry.NewInstruction("Condition", "c")
	require.NoError(t, err)
	c.Attributes().Set("varName", "flag")

	assert.Equal(t, status.Failure, c.Tick(ui.Base{}, ws))
}

func TestCondition_MissingVariableFails(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.SetupAll())

	c, err := registry.NewInstruction("Condition", "c")
	require.NoError(t, err)
	c.Attributes().Set("varName", "nope")

	assert.Equal(t, status.Failure, c.Tick(ui.Base{}, ws))
}

func TestVarExists_PresentVsAbsent(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("flag", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	present, err := registry.NewInstruction("VarExists", "p")
	require.NoError(t, err)
	present.Attributes().Set("varName", "flag")
	assert.Equal(t, status.Success, present.Tick(ui.Base{}, ws))

	absent, err := registry.NewInstruction("VarExists", "a")
	require.NoError(t, err)
	absent.Attributes().Set("varName", "nope")
	assert.Equal(t, status.Failure, absent.Tick(ui.Base{}, ws))
}
