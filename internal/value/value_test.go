package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_DottedPathIntoMapsAndSlices(t *testing.T) {
	v := New("", map[string]interface{}{
		"position": map[string]interface{}{
			"items": []interface{}{"a", "b"},
		},
	})

	got, ok := v.Field("position.items.1")
	require.True(t, ok)
	s, ok := got.AsString()
	require.True(t, ok)
	assert.Equal(t, "b", s)

	_, ok = v.Field("position.missing")
	assert.False(t, ok)
}

func TestAssignFrom_RejectsTypeMismatch(t *testing.T) {
	v := New("int", int64(1))
	ok := v.AssignFrom(New("string", "hello"))
	assert.False(t, ok)

	empty := Empty()
	ok = empty.AssignFrom(New("int", int64(2)))
	assert.True(t, ok)
}

func TestAsBool_CoercionRules(t *testing.T) {
	cases := []struct {
		v       Value
		want    bool
		wantOK  bool
		comment string
	}{
		{New("", int64(0)), false, true, "zero int is false"},
		{New("", int64(5)), true, true, "nonzero int is true"},
		{New("", 0.0), false, true, "zero float is false"},
		{New("", ""), false, true, "empty string is false"},
		{New("", "x"), true, true, "nonempty string is true"},
		{New("", []interface{}{}), false, false, "structures are not coercible"},
	}
	for _, c := range cases {
		got, ok := c.v.AsBool()
		assert.Equal(t, c.wantOK, ok, c.comment)
		if ok {
			assert.Equal(t, c.want, got, c.comment)
		}
	}
}

func TestEqual_LexicalCoercion(t *testing.T) {
	eq, ok := Equal(New("", "3"), New("", 3.0))
	require.True(t, ok)
	assert.True(t, eq)

	_, ok = Equal(New("", []interface{}{1}), New("", map[string]interface{}{}))
	assert.False(t, ok)
}

func TestCompare_Ordering(t *testing.T) {
	cmp, ok := Compare(New("", 1.0), New("", 2.0))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = Compare(New("", "b"), New("", "a"))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)
}

func TestAppendElement_AndWithMember(t *testing.T) {
	arr, ok := AppendElement(Empty(), New("", "first"))
	require.True(t, ok)
	arr, ok = AppendElement(arr, New("", "second"))
	require.True(t, ok)
	assert.True(t, arr.IsArray())

	structure, ok := WithMember(Empty(), "name", New("", "bob"))
	require.True(t, ok)
	field, ok := structure.Field("name")
	require.True(t, ok)
	s, _ := field.AsString()
	assert.Equal(t, "bob", s)
}

func TestAsUintSlice_SingleAndArray(t *testing.T) {
	single, ok := New("", 3).AsUintSlice()
	require.True(t, ok)
	assert.Equal(t, []uint64{3}, single)

	multi, ok := New("", []interface{}{1, 2, 3}).AsUintSlice()
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2, 3}, multi)
}
