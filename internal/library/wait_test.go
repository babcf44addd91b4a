package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func testLogger() arbor.ILogger { return arbor.NewLogger() }

func TestWait_ZeroTimeoutSucceedsImmediately(t *testing.T) {
	w, err := registry.NewInstruction("Wait", "w")
	require.NoError(t, err)

	st := w.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Success, st)
}

func TestWait_NonZeroTimeoutRunsThenSucceeds(t *testing.T) {
	w, err := registry.NewInstruction("Wait", "w")
	require.NoError(t, err)
	w.Attributes().Set("timeout", "0.05")

	st := w.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Running, st)

	time.Sleep(80 * time.Millisecond)
	st = w.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Success, st)
}

func TestWait_HaltedFails(t *testing.T) {
	w, err := registry.NewInstruction("Wait", "w")
	require.NoError(t, err)
	w.Attributes().Set("timeout", "10")
	w.Tick(ui.Base{}, nil) // arms the deadline, returns Running
	w.Halt()

	st := w.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Failure, st)
}

func TestWaitForVariable_SucceedsOnceVariableIsSet(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("flag", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	w, err := registry.NewInstruction("WaitForVariable", "w")
	require.NoError(t, err)
	w.Attributes().Set("varName", "flag")

	st := w.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Running, st)

	ws.SetValue("flag", "", value.New("", "ready"))
	st = w.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Success, st)
}

func TestWaitForVariable_TimesOutToFailure(t *testing.T) {
	ws := workspace.New(testLogger())
	defer ws.Close()
	require.NoError(t, ws.AddVariable("flag", workspace.NewLocalVariable(value.Empty())))
	require.NoError(t, ws.SetupAll())

	w, err := registry.NewInstruction("WaitForVariable", "w")
	require.NoError(t, err)
	w.Attributes().Set("varName", "flag")
	w.Attributes().Set("timeout", "0.05")

	w.Tick(ui.Base{}, ws)
	time.Sleep(80 * time.Millisecond)
	st := w.Tick(ui.Base{}, ws)
	assert.Equal(t, status.Failure, st)
}
