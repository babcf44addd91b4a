package attribute

import (
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

// GetValue returns the raw Value named by attribute name according to its
// category: VariableName reads the workspace field directly; Both strips a
// leading "@" and reads the workspace field, or returns the literal
// string; Literal returns the literal string.
func GetValue(b *Bag, defs []Definition, name string, ws *workspace.Workspace, u ui.UserInterface) (value.Value, bool) {
	def, ok := findDef(defs, name)
	if !ok {
		return value.Empty(), false
	}
	raw, present := b.Raw(name)
	if !present {
		return value.Empty(), false
	}
	switch def.Category {
	case VariableName:
		varName, field := splitVarField(raw)
		return ws.GetValue(varName, field)
	case Both:
		if strings.HasPrefix(raw, "@") {
			varName, field := splitVarField(strings.TrimPrefix(raw, "@"))
			return ws.GetValue(varName, field)
		}
		return value.New("", raw), true
	default:
		return value.New("", raw), true
	}
}

func splitVarField(ref string) (name, field string) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func findDef(defs []Definition, name string) (Definition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// GetValueAs retrieves the named attribute and converts it into *out.
// Absence returns true without touching *out, so callers can preset
// defaults. A conversion failure logs to the UserInterface and returns
// false.
func GetValueAs[T any](b *Bag, defs []Definition, name string, ws *workspace.Workspace, u ui.UserInterface, out *T) bool {
	v, ok := GetValue(b, defs, name, ws, u)
	if !ok {
		return true
	}
	converted, ok := convert[T](v)
	if !ok {
		if u != nil {
			u.Log(ui.Error, "attribute "+name+": conversion failed")
		}
		return false
	}
	*out = converted
	return true
}

func convert[T any](v value.Value) (result T, ok bool) {
	switch any(result).(type) {
	case string:
		s, ok := v.AsString()
		return any(s).(T), ok
	case int:
		i, ok := v.AsInt64()
		return any(int(i)).(T), ok
	case int64:
		i, ok := v.AsInt64()
		return any(i).(T), ok
	case uint64:
		u, ok := v.AsUint64()
		return any(u).(T), ok
	case float64:
		f, ok := v.AsFloat64()
		return any(f).(T), ok
	case bool:
		bv, ok := v.AsBool()
		return any(bv).(T), ok
	case time.Duration:
		f, ok := v.AsFloat64()
		if !ok {
			return result, false
		}
		return any(time.Duration(f * float64(time.Second))).(T), true
	case []uint64:
		arr, ok := v.AsUintSlice()
		return any(arr).(T), ok
	case []string:
		s, ok := v.AsString()
		if !ok {
			return result, false
		}
		parts := strings.Split(s, ",")
		return any(parts).(T), true
	default:
		return result, false
	}
}

// ParseDurationSeconds parses a raw "timeout"-style literal (seconds,
// possibly fractional) the way the Wait family of instructions does.
func ParseDurationSeconds(raw string) (time.Duration, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}
