// Package value is the thin adapter the rest of the engine uses to talk
// about dynamically typed data, standing in for the externally supplied
// AnyValue/AnyType pair spec.md §1 puts out of scope. Nothing outside this
// package inspects the underlying representation.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is an opaque, typed carrier. The zero Value is empty.
type Value struct {
	typeName string
	data     interface{}
}

// Empty returns the empty Value.
func Empty() Value { return Value{} }

// New wraps data under the given type name.
func New(typeName string, data interface{}) Value {
	return Value{typeName: typeName, data: data}
}

// IsEmpty reports whether v carries no data.
func (v Value) IsEmpty() bool { return v.data == nil }

// TypeName returns the declared type name, or "" for the empty Value.
func (v Value) TypeName() string { return v.typeName }

// Raw returns the underlying representation. Callers outside this package
// should prefer Field/As* accessors; Raw exists for variable backends that
// must marshal the value onward.
func (v Value) Raw() interface{} { return v.data }

// Field reads the value at a dotted field path (e.g. "position.x") from a
// structured Value (map[string]interface{} or []interface{} indices).
// Absent paths return (Empty, false).
func (v Value) Field(path string) (Value, bool) {
	if path == "" {
		return v, true
	}
	cur := v.data
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return Empty(), false
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return Empty(), false
			}
			cur = node[idx]
		default:
			return Empty(), false
		}
	}
	return New(v.typeName, cur), true
}

// AssignFrom overwrites v's data from other, succeeding if v is currently
// empty, if the two type names match, or if v's type name is "" (meaning
// it accepts dynamic re-typing).
func (v *Value) AssignFrom(other Value) bool {
	if !v.IsEmpty() && v.typeName != "" && other.typeName != "" && v.typeName != other.typeName {
		return false
	}
	v.data = other.data
	if other.typeName != "" {
		v.typeName = other.typeName
	}
	return true
}

// ParseJSON decodes a JSON-like string into a Value of the given type name.
func ParseJSON(raw string, typeName string) (Value, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Empty(), fmt.Errorf("value: parse %q as %s: %w", raw, typeName, err)
	}
	return New(typeName, data), nil
}

// AsString coerces the carried data to a string, following the lexical
// coercion rules used throughout the instruction library (§4.5).
func (v Value) AsString() (string, bool) {
	switch d := v.data.(type) {
	case nil:
		return "", false
	case string:
		return d, true
	case fmt.Stringer:
		return d.String(), true
	default:
		return fmt.Sprintf("%v", d), true
	}
}

// AsFloat64 coerces the carried data to a float64.
func (v Value) AsFloat64() (float64, bool) {
	switch d := v.data.(type) {
	case float64:
		return d, true
	case float32:
		return float64(d), true
	case int:
		return float64(d), true
	case int64:
		return float64(d), true
	case uint:
		return float64(d), true
	case uint32:
		return float64(d), true
	case uint64:
		return float64(d), true
	case string:
		f, err := strconv.ParseFloat(d, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsInt64 coerces the carried data to an int64.
func (v Value) AsInt64() (int64, bool) {
	switch d := v.data.(type) {
	case int64:
		return d, true
	case int:
		return int64(d), true
	case float64:
		return int64(d), true
	case uint64:
		return int64(d), true
	case uint32:
		return int64(d), true
	case string:
		i, err := strconv.ParseInt(d, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// AsUintSlice coerces the carried data to a slice of unsigned integers, as
// consumed by Choice.varName.
func (v Value) AsUintSlice() ([]uint64, bool) {
	switch d := v.data.(type) {
	case []interface{}:
		out := make([]uint64, 0, len(d))
		for _, item := range d {
			u, ok := New("", item).AsUint64()
			if !ok {
				return nil, false
			}
			out = append(out, u)
		}
		return out, true
	default:
		u, ok := v.AsUint64()
		if !ok {
			return nil, false
		}
		return []uint64{u}, true
	}
}

// AsUint64 coerces the carried data to a uint64.
func (v Value) AsUint64() (uint64, bool) {
	i, ok := v.AsInt64()
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

// AsBool implements the Condition coercion rules of §4.5: integer 0 is
// false, non-zero is true; float NaN or 0.0 is false; non-empty strings
// are true; structures are not coercible (ok=false).
func (v Value) AsBool() (result bool, ok bool) {
	switch d := v.data.(type) {
	case bool:
		return d, true
	case int, int64, uint64, uint32:
		i, _ := v.AsInt64()
		return i != 0, true
	case float64:
		return d == d && d != 0, true // d==d excludes NaN
	case string:
		return d != "", true
	default:
		return false, false
	}
}

// IsArray reports whether the carried data is a slice.
func (v Value) IsArray() bool {
	_, ok := v.data.([]interface{})
	return ok
}

// AppendElement returns a new Value holding the array with elem appended.
// An empty arr starts a new array; any other non-array data fails.
func AppendElement(arr Value, elem Value) (Value, bool) {
	items, ok := arr.data.([]interface{})
	if !ok {
		if arr.data != nil {
			return Empty(), false
		}
		items = nil
	}
	items = append(items, elem.data)
	return New(arr.typeName, items), true
}

// WithMember returns a new Value holding the structure with a field set,
// failing if the underlying data is sealed (e.g. an array element, or any
// non-map structure).
func WithMember(structure Value, name string, member Value) (Value, bool) {
	fields, ok := structure.data.(map[string]interface{})
	if !ok {
		if structure.data != nil {
			return Empty(), false
		}
		fields = map[string]interface{}{}
	} else {
		copied := make(map[string]interface{}, len(fields)+1)
		for k, val := range fields {
			copied[k] = val
		}
		fields = copied
	}
	fields[name] = member.data
	return New(structure.typeName, fields), true
}

// isStructure reports whether v carries a map or an array, which neither
// Equal nor Compare coerces.
func isStructure(v Value) bool {
	switch v.data.(type) {
	case map[string]interface{}, []interface{}:
		return true
	}
	return false
}

// Equal reports value equality after lexical type coercion, used by the
// Equals/comparison family. ok is false when the two values are not
// comparable (incompatible types).
func Equal(a, b Value) (equal bool, ok bool) {
	if isStructure(a) || isStructure(b) {
		return false, false
	}
	if af, aok := a.AsFloat64(); aok {
		if bf, bok := b.AsFloat64(); bok {
			return af == bf, true
		}
	}
	if as, aok := a.AsString(); aok {
		if bs, bok := b.AsString(); bok {
			return as == bs, true
		}
	}
	return false, false
}

// Compare returns -1, 0, 1 for a<b, a==b, a>b after lexical coercion, with
// ok=false when the two are not comparable.
func Compare(a, b Value) (cmp int, ok bool) {
	if isStructure(a) || isStructure(b) {
		return 0, false
	}
	if af, aok := a.AsFloat64(); aok {
		if bf, bok := b.AsFloat64(); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if as, aok := a.AsString(); aok {
		if bs, bok := b.AsString(); bok {
			return strings.Compare(as, bs), true
		}
	}
	return 0, false
}
