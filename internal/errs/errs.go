// Package errs collects the tick-time and setup-time error taxonomy of
// spec.md §7 that doesn't already have a natural home (AttributeError
// lives in package attribute, DuplicateName and VariableUnavailable live
// in package workspace).
package errs

import "errors"

var (
	// CyclicInclude is returned at Setup when Include/IncludeProcedure
	// resolution would form a cycle.
	CyclicInclude = errors.New("cyclic include")
	// TypeMismatch is returned when a value assignment or comparison
	// spans incompatible types.
	TypeMismatch = errors.New("type mismatch")
	// OutOfRange is returned when Choice/UserChoice selects an index
	// outside the child count.
	OutOfRange = errors.New("index out of range")
	// Cancellation is returned when an async operation is halted before
	// completion.
	Cancellation = errors.New("operation cancelled")
	// UserRejection is returned when a user returns a negative
	// confirmation (UserConfirmation's cancelText path).
	UserRejection = errors.New("user rejected")
)
