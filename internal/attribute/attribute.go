// Package attribute implements the declarative attribute system of
// spec.md §4.3: definitions, categories, cross-attribute constraints, and
// fail-fast setup validation.
package attribute

import (
	"fmt"
	"strconv"
	"strings"
)

// Category controls how a raw attribute string is interpreted at tick
// time.
type Category int

const (
	// Literal attributes parse directly to their declared Type.
	Literal Category = iota
	// VariableName attributes name a workspace variable (optionally with
	// a dotted field path); only non-emptiness is validated at Setup.
	VariableName
	// Both attributes are literals unless prefixed with "@", in which
	// case the remainder names a workspace variable/field.
	Both
)

// Type is the declared scalar type of a Literal attribute.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeUint
	TypeFloat
	TypeBool
	TypeDuration
)

// Definition describes one attribute a concrete instruction or variable
// accepts.
type Definition struct {
	Name      string
	Type      Type
	Category  Category
	Mandatory bool
}

// AttributeError is raised by Setup for a missing mandatory attribute, an
// unparseable literal, or a failed constraint.
type AttributeError struct {
	Attribute  string
	Constraint string
	Reason     string
}

func (e *AttributeError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("attribute: constraint %q failed: %s", e.Constraint, e.Reason)
	}
	return fmt.Sprintf("attribute %q: %s", e.Attribute, e.Reason)
}

// entry preserves insertion order, matching spec.md's "ordered map from
// attribute-name to raw string".
type entry struct {
	name  string
	value string
}

// Bag is the ordered set of raw string attributes on one node.
type Bag struct {
	entries []entry
	index   map[string]int
}

// NewBag constructs an empty Bag.
func NewBag() *Bag {
	return &Bag{index: make(map[string]int)}
}

// Set assigns a raw attribute value, preserving first-seen order.
func (b *Bag) Set(name, value string) {
	if i, ok := b.index[name]; ok {
		b.entries[i].value = value
		return
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, entry{name: name, value: value})
}

// Exists reports whether name is present in the bag.
func (b *Bag) Exists(name string) bool {
	_, ok := b.index[name]
	return ok
}

// Raw returns the raw string value for name.
func (b *Bag) Raw(name string) (string, bool) {
	i, ok := b.index[name]
	if !ok {
		return "", false
	}
	return b.entries[i].value, true
}

// Names returns attribute names in insertion order.
func (b *Bag) Names() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.name
	}
	return out
}

// Constraint is a boolean predicate over a Bag.
type Constraint interface {
	Eval(b *Bag) bool
	String() string
}

type existsConstraint struct{ name string }

func (c existsConstraint) Eval(b *Bag) bool { return b.Exists(c.name) }
func (c existsConstraint) String() string   { return fmt.Sprintf("Exists(%s)", c.name) }

// Exists builds a Constraint requiring the named attribute to be present.
func Exists(name string) Constraint { return existsConstraint{name: name} }

type notConstraint struct{ inner Constraint }

func (c notConstraint) Eval(b *Bag) bool { return !c.inner.Eval(b) }
func (c notConstraint) String() string   { return fmt.Sprintf("Not(%s)", c.inner) }

// Not negates a Constraint.
func Not(c Constraint) Constraint { return notConstraint{inner: c} }

type andConstraint struct{ parts []Constraint }

func (c andConstraint) Eval(b *Bag) bool {
	for _, p := range c.parts {
		if !p.Eval(b) {
			return false
		}
	}
	return true
}
func (c andConstraint) String() string { return joinConstraints("And", c.parts) }

// And requires every part to hold.
func And(parts ...Constraint) Constraint { return andConstraint{parts: parts} }

type orConstraint struct{ parts []Constraint }

func (c orConstraint) Eval(b *Bag) bool {
	for _, p := range c.parts {
		if p.Eval(b) {
			return true
		}
	}
	return false
}
func (c orConstraint) String() string { return joinConstraints("Or", c.parts) }

// Or requires at least one part to hold.
func Or(parts ...Constraint) Constraint { return orConstraint{parts: parts} }

type xorConstraint struct{ a, b Constraint }

func (c xorConstraint) Eval(b *Bag) bool { return c.a.Eval(b) != c.b.Eval(b) }
func (c xorConstraint) String() string   { return fmt.Sprintf("Xor(%s, %s)", c.a, c.b) }

// Xor requires exactly one of a, b to hold.
func Xor(a, b Constraint) Constraint { return xorConstraint{a: a, b: b} }

func joinConstraints(op string, parts []Constraint) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", op, strings.Join(strs, ", "))
}

// Validate checks every mandatory definition is present, every present
// Literal-category attribute parses to its declared Type (VariableName
// only requires non-empty; Both treats a leading "@" as a variable
// reference and does not literal-parse the remainder), and every
// constraint evaluates true. No side effect of a failed Validate persists
// since Bag mutation only happens via Set.
func Validate(b *Bag, defs []Definition, constraints []Constraint) error {
	for _, def := range defs {
		raw, present := b.Raw(def.Name)
		if !present {
			if def.Mandatory {
				return &AttributeError{Attribute: def.Name, Reason: "mandatory attribute missing"}
			}
			continue
		}
		switch def.Category {
		case VariableName:
			if strings.TrimSpace(raw) == "" {
				return &AttributeError{Attribute: def.Name, Reason: "variable-reference attribute must be non-empty"}
			}
		case Both:
			if strings.HasPrefix(raw, "@") {
				if strings.TrimSpace(strings.TrimPrefix(raw, "@")) == "" {
					return &AttributeError{Attribute: def.Name, Reason: "variable reference after '@' must be non-empty"}
				}
				continue
			}
			if err := checkLiteral(def, raw); err != nil {
				return err
			}
		default: // Literal
			if err := checkLiteral(def, raw); err != nil {
				return err
			}
		}
	}
	for _, c := range constraints {
		if !c.Eval(b) {
			return &AttributeError{Constraint: c.String(), Reason: "constraint not satisfied"}
		}
	}
	return nil
}

func checkLiteral(def Definition, raw string) error {
	var err error
	switch def.Type {
	case TypeInt:
		_, err = strconv.ParseInt(raw, 10, 64)
	case TypeUint:
		_, err = strconv.ParseUint(raw, 10, 64)
	case TypeFloat:
		_, err = strconv.ParseFloat(raw, 64)
	case TypeBool:
		_, err = strconv.ParseBool(raw)
	case TypeDuration:
		_, err = strconv.ParseFloat(raw, 64) // seconds, per Wait/timeout usage
	case TypeString:
		// always parses
	}
	if err != nil {
		return &AttributeError{Attribute: def.Name, Reason: fmt.Sprintf("does not parse as declared type: %v", err)}
	}
	return nil
}
