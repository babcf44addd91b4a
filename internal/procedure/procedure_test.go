package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func testLogger() arbor.ILogger { return arbor.NewLogger() }

type leafNode struct {
	*instr.Base
}

func newLeaf(id string, root bool) instr.Instruction {
	n := &leafNode{}
	n.Base = instr.NewBase(n, id, "Leaf", nil, nil)
	n.SetRoot(root)
	return n
}

func (n *leafNode) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return status.Success
}

func TestAddTopLevel_RejectsDuplicateID(t *testing.T) {
	p := New("p", "1.0", testLogger(), nil)
	require.NoError(t, p.AddTopLevel(newLeaf("a", false)))
	err := p.AddTopLevel(newLeaf("a", false))
	assert.Error(t, err)
}

func TestAddTopLevel_RejectsMoreThanOneRoot(t *testing.T) {
	p := New("p", "1.0", testLogger(), nil)
	require.NoError(t, p.AddTopLevel(newLeaf("a", true)))
	err := p.AddTopLevel(newLeaf("b", true))
	assert.Error(t, err)
}

func TestSetup_RunsWorkspaceAndEveryTopLevelInstruction(t *testing.T) {
	p := New("p", "1.0", testLogger(), nil)
	require.NoError(t, p.Workspace.AddVariable("counter", workspace.NewLocalVariable(value.New("", int64(1)))))
	require.NoError(t, p.AddTopLevel(newLeaf("a", true)))

	require.NoError(t, p.Setup())

	_, ok := p.Workspace.GetValue("counter", "")
	assert.True(t, ok, "workspace variables must be set up by Procedure.Setup")

	st := p.Root().Tick(ui.Base{}, p.Workspace)
	assert.Equal(t, status.Success, st)
}

func TestTeardown_ClosesWorkspace(t *testing.T) {
	p := New("p", "1.0", testLogger(), nil)
	require.NoError(t, p.AddTopLevel(newLeaf("a", true)))
	require.NoError(t, p.Setup())
	require.NoError(t, p.Teardown())
}

func TestTopLevel_AndTopLevelNamesReflectRegistrationOrder(t *testing.T) {
	p := New("p", "1.0", testLogger(), nil)
	require.NoError(t, p.AddTopLevel(newLeaf("b", false)))
	require.NoError(t, p.AddTopLevel(newLeaf("a", false)))

	assert.Equal(t, []string{"b", "a"}, p.TopLevelNames())
	got, ok := p.TopLevel("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID())

	_, ok = p.TopLevel("missing")
	assert.False(t, ok)
}
