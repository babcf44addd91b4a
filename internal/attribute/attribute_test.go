package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bagWith(pairs ...string) *Bag {
	b := NewBag()
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], pairs[i+1])
	}
	return b
}

func TestBag_SetPreservesInsertionOrderAndOverwrites(t *testing.T) {
	b := NewBag()
	b.Set("a", "1")
	b.Set("b", "2")
	b.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, b.Names())
	raw, ok := b.Raw("a")
	require.True(t, ok)
	assert.Equal(t, "3", raw)
}

func TestValidate_MissingMandatoryFails(t *testing.T) {
	defs := []Definition{{Name: "timeout", Type: TypeFloat, Category: Literal, Mandatory: true}}
	err := Validate(NewBag(), defs, nil)
	require.Error(t, err)
	var attrErr *AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, "timeout", attrErr.Attribute)
}

func TestValidate_LiteralTypeMismatchFails(t *testing.T) {
	defs := []Definition{{Name: "count", Type: TypeInt, Category: Literal}}
	err := Validate(bagWith("count", "not-a-number"), defs, nil)
	assert.Error(t, err)
}

func TestValidate_VariableNameRequiresNonEmpty(t *testing.T) {
	defs := []Definition{{Name: "varName", Type: TypeString, Category: VariableName}}
	assert.Error(t, Validate(bagWith("varName", "  "), defs, nil))
	assert.NoError(t, Validate(bagWith("varName", "counter"), defs, nil))
}

func TestValidate_BothCategoryAcceptsLiteralOrAtPrefixedReference(t *testing.T) {
	defs := []Definition{{Name: "value", Type: TypeInt, Category: Both}}
	assert.NoError(t, Validate(bagWith("value", "42"), defs, nil))
	assert.NoError(t, Validate(bagWith("value", "@counter"), defs, nil))
	assert.Error(t, Validate(bagWith("value", "@"), defs, nil))
	assert.Error(t, Validate(bagWith("value", "not-an-int"), defs, nil))
}

func TestValidate_ConstraintFailureReported(t *testing.T) {
	err := Validate(NewBag(), nil, []Constraint{Exists("required")})
	require.Error(t, err)
	var attrErr *AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.NotEmpty(t, attrErr.Constraint)
}

func TestConstraints_AndOrXorNot(t *testing.T) {
	b := bagWith("a", "1")

	assert.True(t, And(Exists("a")).Eval(b))
	assert.False(t, And(Exists("a"), Exists("b")).Eval(b))
	assert.True(t, Or(Exists("a"), Exists("b")).Eval(b))
	assert.True(t, Xor(Exists("a"), Exists("b")).Eval(b))
	assert.False(t, Xor(Exists("a"), Exists("a")).Eval(b))
	assert.True(t, Not(Exists("b")).Eval(b))
}
