// Package registry is the process-wide, read-mostly name -> factory map
// described in spec.md §4.9. Concrete instruction types register
// themselves here via an init() in package library, and this package's
// own init() registers the built-in Local variable type; lookups are
// thread-safe and expected only after start-up, so the hot tick path never
// takes a lock.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/value"
	"github.com/ternarybob/oaktree/internal/workspace"
)

// InstructionFactory builds a fresh, unconfigured Instruction with the
// given node ID.
type InstructionFactory func(id string) instr.Instruction

// VariableFactory builds a fresh, unconfigured Variable, seeded from the
// raw, unvalidated attribute bag passed by the caller (the workspace loader).
type VariableFactory func(attrs map[string]string) (workspace.Variable, error)

var (
	mu           sync.RWMutex
	instructions = make(map[string]InstructionFactory)
	variables    = make(map[string]VariableFactory)
)

// RegisterInstruction adds a named instruction factory. Intended to be
// called from package-level init() functions only.
func RegisterInstruction(typeName string, f InstructionFactory) {
	mu.Lock()
	defer mu.Unlock()
	instructions[typeName] = f
}

// RegisterVariable adds a named variable factory.
func RegisterVariable(typeName string, f VariableFactory) {
	mu.Lock()
	defer mu.Unlock()
	variables[typeName] = f
}

// NewInstruction constructs a new instruction of typeName with node id.
func NewInstruction(typeName, id string) (instr.Instruction, error) {
	mu.RLock()
	f, ok := instructions[typeName]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: unknown instruction type %q", typeName)
	}
	return f(id), nil
}

// NewVariable constructs a new variable of typeName from its attributes.
func NewVariable(typeName string, attrs map[string]string) (workspace.Variable, error) {
	mu.RLock()
	f, ok := variables[typeName]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: unknown variable type %q", typeName)
	}
	return f(attrs)
}

// InstructionTypes lists registered instruction type names, sorted, for
// diagnostics.
func InstructionTypes() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(instructions))
	for n := range instructions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterVariable("Local", func(attrs map[string]string) (workspace.Variable, error) {
		if raw, ok := attrs["value"]; ok {
			v, err := value.ParseJSON(raw, "")
			if err == nil {
				return workspace.NewLocalVariable(v), nil
			}
			return workspace.NewLocalVariable(value.New("", raw)), nil
		}
		return workspace.NewLocalVariable(value.Empty()), nil
	})
}
