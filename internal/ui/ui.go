// Package ui defines the abstract observer/prompter contract of
// spec.md §4.6: status and variable-update notifications (thread-safe,
// callable from the tick thread or the workspace dispatcher thread) and
// output/input prompts (tick-thread only, returning an async future).
package ui

import (
	"sync"

	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/value"
)

// Severity mirrors the Log instruction's closed set of levels (§4.5).
type Severity string

const (
	Emergency Severity = "emergency"
	Alert     Severity = "alert"
	Critical  Severity = "critical"
	Error     Severity = "error"
	Warning   Severity = "warning"
	Notice    Severity = "notice"
	Info      Severity = "info"
	Debug     Severity = "debug"
	Trace     Severity = "trace"
)

// ValidSeverity reports whether s is one of the nine defined levels.
func ValidSeverity(s string) bool {
	switch Severity(s) {
	case Emergency, Alert, Critical, Error, Warning, Notice, Info, Debug, Trace:
		return true
	}
	return false
}

// NodeInfo is the minimal identity of an Instruction, passed to
// UpdateInstructionStatus without requiring this package to import the
// instruction package.
type NodeInfo struct {
	ID       string
	TypeName string
	Name     string
}

// Future is a handle to a pending user-interface response: queryable for
// readiness, retrievable once ready, cancellable at any time. Instructions
// must never block on it inside TickImpl; they poll IsReady and return
// Running/NotFinished until it resolves.
type Future[T any] interface {
	IsReady() bool
	Get() (T, error)
	Cancel()
}

// UserInterface is the abstract observer/prompter. Implementations should
// embed Base so only the methods they care about need overriding.
type UserInterface interface {
	// Thread-safe: callable from the tick thread or the workspace
	// dispatcher thread.
	UpdateInstructionStatus(node NodeInfo, newStatus status.ExecutionStatus)
	VariableUpdated(name string, v value.Value, connected bool)
	Message(text string)
	Log(severity Severity, text string)

	// Tick-thread only: prompts, which return an async Future.
	RequestInput(description string) Future[value.Value]
	RequestConfirmation(description, okText, cancelText string) Future[Confirmation]
	RequestChoice(description string, optionCount int) Future[int]
}

// Confirmation is the result of a RequestConfirmation prompt.
type Confirmation int

const (
	Confirmed Confirmation = iota
	Rejected
)

// Base is a no-op UserInterface implementation. Embed it and override only
// what you need.
type Base struct{}

func (Base) UpdateInstructionStatus(NodeInfo, status.ExecutionStatus)    {}
func (Base) VariableUpdated(string, value.Value, bool)                  {}
func (Base) Message(string)                                             {}
func (Base) Log(Severity, string)                                       {}
func (Base) RequestInput(string) Future[value.Value]                    { return resolvedFuture[value.Value]{err: errNoUI} }
func (Base) RequestConfirmation(string, string, string) Future[Confirmation] {
	return resolvedFuture[Confirmation]{v: Rejected}
}
func (Base) RequestChoice(string, int) Future[int] { return resolvedFuture[int]{err: errNoUI} }

// resolvedFuture is an already-settled Future, used by Base's default
// prompt implementations (no UI attached, nothing can ever answer): input
// and choice prompts fail with errNoUI, confirmations resolve to Rejected.
type resolvedFuture[T any] struct {
	v   T
	err error
}

func (resolvedFuture[T]) IsReady() bool { return true }
func (f resolvedFuture[T]) Get() (T, error) {
	return f.v, f.err
}
func (resolvedFuture[T]) Cancel() {}

var errNoUI = errNoUIError{}

type errNoUIError struct{}

func (errNoUIError) Error() string { return "ui: no interactive UserInterface attached" }

// Promise is a settable Future, for real UserInterface implementations
// that service prompts asynchronously (e.g. over a WebSocket).
type Promise[T any] struct {
	mu        sync.Mutex
	ready     bool
	val       T
	err       error
	cancelled bool
}

// NewPromise returns a pending Promise and its Future view.
func NewPromise[T any]() (*Promise[T], Future[T]) {
	p := &Promise[T]{}
	return p, p
}

func (p *Promise[T]) Resolve(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return
	}
	p.val = v
	p.ready = true
}

func (p *Promise[T]) Reject(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return
	}
	p.err = err
	p.ready = true
}

func (p *Promise[T]) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Promise[T]) Get() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		var zero T
		return zero, errNotReady
	}
	return p.val, p.err
}

func (p *Promise[T]) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return
	}
	p.cancelled = true
	p.ready = true
	p.err = errCancelled
}

var errNotReady = errNotReadyError{}

type errNotReadyError struct{}

func (errNotReadyError) Error() string { return "ui: future not ready" }

var errCancelled = errCancelledError{}

type errCancelledError struct{}

func (errCancelledError) Error() string { return "ui: future cancelled" }
