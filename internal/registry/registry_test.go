package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/workspace"
)

type noopNode struct {
	*instr.Base
}

func newNoopNode(id string) instr.Instruction {
	n := &noopNode{}
	n.Base = instr.NewBase(n, id, "__test_noop__", nil, nil)
	return n
}

func (n *noopNode) TickImpl(u ui.UserInterface, ws *workspace.Workspace) status.ExecutionStatus {
	return status.Success
}

func TestNewInstruction_UnknownTypeErrors(t *testing.T) {
	_, err := NewInstruction("NotARealType", "x")
	assert.Error(t, err)
}

func TestRegisterInstruction_ThenNewInstructionConstructsIt(t *testing.T) {
	RegisterInstruction("__test_noop__", newNoopNode)

	got, err := NewInstruction("__test_noop__", "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", got.ID())
	assert.Equal(t, "__test_noop__", got.TypeName())
}

func TestLocalVariable_BuiltinRegistration(t *testing.T) {
	v, err := NewVariable("Local", map[string]string{"value": `"seeded"`})
	require.NoError(t, err)
	_, err = v.Setup()
	require.NoError(t, err)

	got, err := v.GetValue("")
	require.NoError(t, err)
	s, _ := got.AsString()
	assert.Equal(t, "seeded", s)
}

func TestNewVariable_UnknownTypeErrors(t *testing.T) {
	_, err := NewVariable("NotARealType", nil)
	assert.Error(t, err)
}

func TestInstructionTypes_IsSorted(t *testing.T) {
	RegisterInstruction("__test_noop__", newNoopNode)
	types := InstructionTypes()
	for i := 1; i < len(types); i++ {
		assert.LessOrEqual(t, types[i-1], types[i], "InstructionTypes must be sorted")
	}
}
