// Package workspace implements the shared, thread-safe, change-notifying
// store of dynamically typed Variables described in spec.md §4.2.
package workspace

import (
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/oaktree/internal/value"
)

// Variable is a polymorphic named store entry. Concrete variable types
// (e.g. "Local", a would-be "File"/"Network"/"CA"/"PVA" backend) implement
// this; the Workspace never looks past it.
type Variable interface {
	TypeName() string
	Setup() (*SetupTeardownActions, error)
	Teardown() error
	Available() bool
	GetValue(fieldPath string) (value.Value, error)
	SetValue(fieldPath string, v value.Value) error
}

// SetupTeardownActions is returned from Variable.Setup to register a
// run-once action keyed by Identifier. SetupAll runs each distinct
// PostSetup after all variables are set up; PreTeardown is not run by
// TeardownAll.
type SetupTeardownActions struct {
	Identifier string
	PostSetup  func() error
	PreTeardown func() error
}

// ErrDuplicateName is returned by AddVariable for a name already present.
var ErrDuplicateName = fmt.Errorf("workspace: duplicate variable name")

// ErrVariableUnavailable is returned when a variable is accessed before
// Setup or after Teardown, or its backend reports unavailable.
var ErrVariableUnavailable = fmt.Errorf("workspace: variable unavailable")

// Listener is notified of a change to a single variable. Coalescing is
// permitted: a slow listener may observe only the latest state, but it
// will always eventually observe the final one. Listeners must not block.
type Listener func(name string, v value.Value, available bool)

// SubscriptionHandle identifies a previously registered Listener.
type SubscriptionHandle struct {
	name string
	id   uint64
}

type entry struct {
	mu       sync.RWMutex
	variable Variable
}

type subscriber struct {
	id     uint64
	notify Listener
}

type notification struct {
	name      string
	v         value.Value
	available bool
}

// Workspace is the procedure's named variable store.
type Workspace struct {
	logger arbor.ILogger

	mu      sync.RWMutex
	order   []string
	entries map[string]*entry

	subMu       sync.Mutex
	nextSubID   uint64
	subscribers map[string][]subscriber

	notifyMu sync.Mutex
	pending  map[string]notification
	queue    []string
	wake     chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// New constructs an empty Workspace with a running notification dispatcher.
func New(logger arbor.ILogger) *Workspace {
	ws := &Workspace{
		logger:      logger,
		entries:     make(map[string]*entry),
		subscribers: make(map[string][]subscriber),
		pending:     make(map[string]notification),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	ws.wg.Add(1)
	go ws.dispatch()
	return ws
}

// dispatch is the background notification thread. Per §5, listener logic
// must never run while a variable's per-variable lock is held; by the time
// a notification reaches this goroutine the originating SetValue call has
// already returned and released its lock.
//
// pending/queue hold at most one outstanding notification per variable
// name: a write to a name already queued overwrites that slot in place,
// so a burst of writes to the same variable always coalesces to its
// latest value without ever reordering it relative to writes on other
// names, which first entered the queue in their own write order.
func (ws *Workspace) dispatch() {
	defer ws.wg.Done()
	for {
		select {
		case <-ws.wake:
			for {
				ws.notifyMu.Lock()
				if len(ws.queue) == 0 {
					ws.notifyMu.Unlock()
					break
				}
				name := ws.queue[0]
				ws.queue = ws.queue[1:]
				n := ws.pending[name]
				delete(ws.pending, name)
				ws.notifyMu.Unlock()
				ws.deliver(n)
			}
		case <-ws.done:
			return
		}
	}
}

func (ws *Workspace) deliver(n notification) {
	ws.subMu.Lock()
	subs := append([]subscriber(nil), ws.subscribers[n.name]...)
	ws.subMu.Unlock()
	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					ws.logger.Error().Interface("panic", r).Str("variable", n.name).Msg("workspace listener panicked")
				}
			}()
			s.notify(n.name, n.v, n.available)
		}()
	}
}

// Close stops the notification dispatcher. Safe to call once, after all
// ticking has stopped.
func (ws *Workspace) Close() {
	close(ws.done)
	ws.wg.Wait()
}

// AddVariable registers a new named Variable, preserving insertion order.
func (ws *Workspace) AddVariable(name string, v Variable) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, exists := ws.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	ws.entries[name] = &entry{variable: v}
	ws.order = append(ws.order, name)
	return nil
}

// Names returns the variable names in insertion order.
func (ws *Workspace) Names() []string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return append([]string(nil), ws.order...)
}

// Variable returns the named Variable, for callers (e.g. WaitForVariables)
// that need to enumerate by type rather than by field path.
func (ws *Workspace) Variable(name string) (Variable, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	e, ok := ws.entries[name]
	if !ok {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.variable, true
}

// SetupAll calls Setup on every variable in insertion order, deduplicates
// the returned SetupTeardownActions by Identifier, then runs the post-setup
// actions in registration order. On the first failure it tears down every
// variable already set up and returns the error.
func (ws *Workspace) SetupAll() error {
	ws.mu.RLock()
	names := append([]string(nil), ws.order...)
	ws.mu.RUnlock()

	var actions []*SetupTeardownActions
	seen := make(map[string]bool)
	var done []string

	for _, name := range names {
		e, _ := ws.Variable(name)
		_ = e
		ws.mu.RLock()
		ent := ws.entries[name]
		ws.mu.RUnlock()

		ent.mu.Lock()
		act, err := ent.variable.Setup()
		ent.mu.Unlock()
		if err != nil {
			ws.teardownNames(done)
			return fmt.Errorf("workspace: setup %s: %w", name, err)
		}
		done = append(done, name)
		if act != nil && !seen[act.Identifier] {
			seen[act.Identifier] = true
			actions = append(actions, act)
		}
	}

	for _, act := range actions {
		if act.PostSetup == nil {
			continue
		}
		if err := act.PostSetup(); err != nil {
			ws.teardownNames(done)
			return fmt.Errorf("workspace: post-setup action %s: %w", act.Identifier, err)
		}
	}
	return nil
}

func (ws *Workspace) teardownNames(names []string) {
	for i := len(names) - 1; i >= 0; i-- {
		ws.mu.RLock()
		ent := ws.entries[names[i]]
		ws.mu.RUnlock()
		ent.mu.Lock()
		if err := ent.variable.Teardown(); err != nil {
			ws.logger.Warn().Err(err).Str("variable", names[i]).Msg("teardown during rollback failed")
		}
		ent.mu.Unlock()
	}
}

// TeardownAll tears down variables in reverse creation order and returns
// the first error. It runs no PreTeardown actions: SetupAll does not keep
// the actions it collects.
func (ws *Workspace) TeardownAll() error {
	ws.mu.RLock()
	names := append([]string(nil), ws.order...)
	ws.mu.RUnlock()

	var firstErr error
	for i := len(names) - 1; i >= 0; i-- {
		ws.mu.RLock()
		ent := ws.entries[names[i]]
		ws.mu.RUnlock()
		ent.mu.Lock()
		err := ent.variable.Teardown()
		ent.mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("workspace: teardown %s: %w", names[i], err)
		}
	}
	return firstErr
}

// GetValue reads fieldPath from the named variable under its per-variable
// lock. The bool result is false if the variable does not exist or the
// path is absent/unavailable.
func (ws *Workspace) GetValue(name, fieldPath string) (value.Value, bool) {
	ws.mu.RLock()
	ent, ok := ws.entries[name]
	ws.mu.RUnlock()
	if !ok {
		return value.Empty(), false
	}
	ent.mu.RLock()
	defer ent.mu.RUnlock()
	if !ent.variable.Available() {
		return value.Empty(), false
	}
	v, err := ent.variable.GetValue(fieldPath)
	if err != nil {
		return value.Empty(), false
	}
	return v, true
}

// SetValue writes fieldPath on the named variable under its per-variable
// lock and, on success, publishes a change notification for name.
func (ws *Workspace) SetValue(name, fieldPath string, v value.Value) bool {
	ws.mu.RLock()
	ent, ok := ws.entries[name]
	ws.mu.RUnlock()
	if !ok {
		return false
	}
	ent.mu.Lock()
	err := ent.variable.SetValue(fieldPath, v)
	available := ent.variable.Available()
	ent.mu.Unlock()
	if err != nil {
		return false
	}

	ws.notifyMu.Lock()
	if _, queued := ws.pending[name]; !queued {
		ws.queue = append(ws.queue, name)
	}
	ws.pending[name] = notification{name: name, v: v, available: available}
	ws.notifyMu.Unlock()

	select {
	case ws.wake <- struct{}{}:
	default:
		// Dispatcher is already awake and will drain the queue; no need
		// to queue a second wake-up.
	}
	return true
}

// Subscribe registers listener for changes to the named variable.
func (ws *Workspace) Subscribe(name string, listener Listener) SubscriptionHandle {
	ws.subMu.Lock()
	defer ws.subMu.Unlock()
	ws.nextSubID++
	id := ws.nextSubID
	ws.subscribers[name] = append(ws.subscribers[name], subscriber{id: id, notify: listener})
	return SubscriptionHandle{name: name, id: id}
}

// Unsubscribe removes a previously registered listener.
func (ws *Workspace) Unsubscribe(h SubscriptionHandle) {
	ws.subMu.Lock()
	defer ws.subMu.Unlock()
	subs := ws.subscribers[h.name]
	for i, s := range subs {
		if s.id == h.id {
			ws.subscribers[h.name] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
