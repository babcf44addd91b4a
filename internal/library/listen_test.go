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

func TestListen_DoesNotTickChildBeforeFirstChange(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("trigger", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	l, err := registry.NewInstruction("Listen", "l")
	require.NoError(t, err)
	l.Attributes().Set("varNames", "trigger")
	child := newFixed("body", status.Success)
	l.AddChild(child)

	st := l.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Running, st)
	assert.Equal(t, status.NotStarted, child.Status())
}

func TestListen_TicksAndTerminatesChildOnChangeWithoutForceSuccess(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("trigger", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	l, err := registry.NewInstruction("Listen", "l")
	require.NoError(t, err)
	l.Attributes().Set("varNames", "trigger")
	l.AddChild(newFixed("body", status.Success))

	l.Tick(ui.Base{}, ws)
	ws.SetValue("trigger", "", value.New("", "go"))

	st := l.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Success, st)
}

func TestListen_ForceSuccessKeepsListeningAfterChildSuccess(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("trigger", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	l, err := registry.NewInstruction("Listen", "l")
	require.NoError(t, err)
	l.Attributes().Set("varNames", "trigger")
	l.Attributes().Set("forceSuccess", "true")
	l.AddChild(newFixed("body", status.Success))

	l.Tick(ui.Base{}, ws)
	ws.SetValue("trigger", "", value.New("", "go"))

	st := l.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Running, st, "forceSuccess must keep the listener alive after a Success")
}

func TestListen_ForceSuccessStillTerminatesOnFailure(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("trigger", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	l, err := registry.NewInstruction("Listen", "l")
	require.NoError(t, err)
	l.Attributes().Set("varNames", "trigger")
	l.Attributes().Set("forceSuccess", "true")
	l.AddChild(newFixed("body", status.Failure))

	l.Tick(ui.Base{}, ws)
	ws.SetValue("trigger", "", value.New("", "go"))

	st := l.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Failure, st)
}

func TestListen_HaltUnsubscribesAndFails(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("trigger", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	l, err := registry.NewInstruction("Listen", "l")
	require.NoError(t, err)
	l.Attributes().Set("varNames", "trigger")
	l.AddChild(newFixed("body", status.Success))

	l.Tick(ui.Base{}, ws)
	l.Halt()
	st := l.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Failure, st)
}
