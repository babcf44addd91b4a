package workspace

import (
	"sync"

	"github.com/ternarybob/oaktree/internal/value"
)

// LocalVariable is the in-process Variable backend named "Local" in the
// Workspace XML shape (spec.md §6). It never reports unavailable once set
// up; its sole job is to hold a Value in memory.
type LocalVariable struct {
	mu        sync.Mutex
	available bool
	v         value.Value
}

// NewLocalVariable constructs a Local variable, optionally pre-seeded.
func NewLocalVariable(initial value.Value) *LocalVariable {
	return &LocalVariable{v: initial}
}

func (l *LocalVariable) TypeName() string { return "Local" }

func (l *LocalVariable) Setup() (*SetupTeardownActions, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.available = true
	return nil, nil
}

func (l *LocalVariable) Teardown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.available = false
	l.v = value.Empty()
	return nil
}

func (l *LocalVariable) Available() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

func (l *LocalVariable) GetValue(fieldPath string) (value.Value, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.available {
		return value.Empty(), ErrVariableUnavailable
	}
	v, ok := l.v.Field(fieldPath)
	if !ok {
		return value.Empty(), ErrVariableUnavailable
	}
	return v, nil
}

func (l *LocalVariable) SetValue(fieldPath string, v value.Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.available {
		return ErrVariableUnavailable
	}
	if fieldPath == "" {
		l.v = v
		return nil
	}
	// A non-empty fieldPath names one top-level member: the whole value is
	// replaced with a copy that has that member set. A dotted path is used
	// as a single key, not walked; only top-level (fieldPath=="")
	// assignment is common in the instruction library.
	updated, ok := value.WithMember(l.v, fieldPath, v)
	if !ok {
		return ErrVariableUnavailable
	}
	l.v = updated
	return nil
}
