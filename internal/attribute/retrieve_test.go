package attribute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

func testLogger() arbor.ILogger { return arbor.NewLogger() }

func testWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws := workspace.New(testLogger())
	t.Cleanup(ws.Close)
	require.NoError(t, ws.AddVariable("counter", workspace.NewLocalVariable(value.New("", int64(5)))))
	require.NoError(t, ws.SetupAll())
	return ws
}

func TestGetValue_LiteralCategory(t *testing.T) {
	defs := []Definition{{Name: "message", Type: TypeString, Category: Literal}}
	b := bagWith("message", "hello")

	v, ok := GetValue(b, defs, "message", nil, nil)
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "hello", s)
}

func TestGetValue_VariableNameCategoryReadsWorkspace(t *testing.T) {
	ws := testWorkspace(t)
	defs := []Definition{{Name: "varName", Type: TypeString, Category: VariableName}}
	b := bagWith("varName", "counter")

	v, ok := GetValue(b, defs, "varName", ws, nil)
	require.True(t, ok)
	n, _ := v.AsInt64()
	assert.Equal(t, int64(5), n)
}

func TestGetValue_BothCategoryStripsAtPrefix(t *testing.T) {
	ws := testWorkspace(t)
	defs := []Definition{{Name: "value", Type: TypeInt, Category: Both}}

	literal := bagWith("value", "9")
	v, ok := GetValue(literal, defs, "value", ws, nil)
	require.True(t, ok)
	n, _ := v.AsInt64()
	assert.Equal(t, int64(9), n)

	reference := bagWith("value", "@counter")
	v, ok = GetValue(reference, defs, "value", ws, nil)
	require.True(t, ok)
	n, _ = v.AsInt64()
	assert.Equal(t, int64(5), n)
}

func TestGetValueAs_ConvertsToDeclaredType(t *testing.T) {
	defs := []Definition{{Name: "timeout", Type: TypeFloat, Category: Literal}}
	b := bagWith("timeout", "2.5")

	var d time.Duration
	ok := GetValueAs[time.Duration](b, defs, "timeout", nil, nil, &d)
	require.True(t, ok)
	assert.Equal(t, 2500*time.Millisecond, d)
}

func TestGetValueAs_AbsentAttributeLeavesDefaultUntouched(t *testing.T) {
	defs := []Definition{{Name: "timeout", Type: TypeFloat, Category: Literal}}
	out := 3
	ok := GetValueAs[int](NewBag(), defs, "timeout", nil, nil, &out)
	assert.True(t, ok)
	assert.Equal(t, 3, out)
}

func TestParseDurationSeconds(t *testing.T) {
	d, err := ParseDurationSeconds("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	_, err = ParseDurationSeconds("nope")
	assert.Error(t, err)
}
