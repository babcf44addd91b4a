// Package server implements the optional HTTP/WS control surface of
// SPEC_FULL.md §4.12: submitting procedures, driving a Runner's
// step/pause/halt/breakpoint controls over HTTP, and streaming live
// UserInterface events over WebSocket.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/common"
	"github.com/ternarybob/oaktree/internal/history"
	"github.com/ternarybob/oaktree/internal/procedure"
	"github.com/ternarybob/oaktree/internal/runner"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
)

// run is one submitted procedure's live state: its Runner, the Procedure
// it drives, and the broadcasting UserInterface events from its ticks
// flow through.
type run struct {
	id        string
	procedure *procedure.Procedure
	runner    *runner.Runner
	broadcast *broadcastUI
	cancel    context.CancelFunc
}

// Registry tracks every run submitted to the control surface, keyed by
// run ID.
type Registry struct {
	logger arbor.ILogger
	store  *history.Store // nil when history is disabled

	mu   sync.Mutex
	runs map[string]*run
}

// NewRegistry constructs an empty Registry. store may be nil when
// SPEC_FULL.md §4.10's History.Enabled is false.
func NewRegistry(logger arbor.ILogger, store *history.Store) *Registry {
	return &Registry{logger: logger, store: store, runs: make(map[string]*run)}
}

// Submit registers p under a fresh run ID, wiring a broadcasting
// UserInterface (optionally wrapped by a history.Recorder) to its Runner,
// and runs Setup. The run does not start ticking until Step or Run is
// called against it.
func (reg *Registry) Submit(p *procedure.Procedure) (string, error) {
	runID := uuid.New().String()
	runLogger := common.WithCorrelationID(reg.logger, runID)

	bc := newBroadcastUI()
	var u ui.UserInterface = bc
	if reg.store != nil {
		u = history.NewRecorder(bc, reg.store, runID, runLogger)
	}

	if err := p.Setup(); err != nil {
		return "", fmt.Errorf("server: submit: setup: %w", err)
	}

	r := runner.New(runLogger, u)
	if err := r.SetProcedure(p); err != nil {
		return "", fmt.Errorf("server: submit: %w", err)
	}

	reg.mu.Lock()
	reg.runs[runID] = &run{id: runID, procedure: p, runner: r, broadcast: bc}
	reg.mu.Unlock()

	return runID, nil
}

// Get returns the run registered under id, if any.
func (reg *Registry) Get(id string) (*run, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.runs[id]
	return r, ok
}

// Remove drops a run from the registry, cancelling any in-flight
// ExecuteProcedure call first.
func (reg *Registry) Remove(id string) {
	reg.mu.Lock()
	r, ok := reg.runs[id]
	delete(reg.runs, id)
	reg.mu.Unlock()
	if ok && r.cancel != nil {
		r.cancel()
	}
}

// errUnknownRun is returned by the exported per-run operations below when
// id names no registered run.
var errUnknownRun = unknownRunError{}

type unknownRunError struct{}

func (unknownRunError) Error() string { return "server: unknown run id" }

// Step ticks the named run's root exactly once (§4.13 oaktree_step).
func (reg *Registry) Step(id string) (status.ExecutionStatus, error) {
	r, ok := reg.Get(id)
	if !ok {
		return status.Failure, errUnknownRun
	}
	return r.runner.ExecuteSingle(), nil
}

// RunAsync starts ExecuteProcedure in the background, returning
// immediately (§4.13 oaktree_run_procedure resuming/driving a run).
func (reg *Registry) RunAsync(id string) error {
	r, ok := reg.Get(id)
	if !ok {
		return errUnknownRun
	}
	ctx, cancel := context.WithCancel(context.Background())
	reg.mu.Lock()
	r.cancel = cancel
	reg.mu.Unlock()
	go r.runner.ExecuteProcedure(ctx)
	return nil
}

// Halt halts the named run's root (§4.13 oaktree_halt).
func (reg *Registry) Halt(id string) error {
	r, ok := reg.Get(id)
	if !ok {
		return errUnknownRun
	}
	r.runner.Halt()
	return nil
}

// RunStatus reports the named run's current root status (§4.13
// oaktree_status).
func (reg *Registry) RunStatus(id string) (status.ExecutionStatus, bool, bool, error) {
	r, ok := reg.Get(id)
	if !ok {
		return status.Failure, false, false, errUnknownRun
	}
	st := status.NotStarted
	if root := r.procedure.Root(); root != nil {
		st = root.Status()
	}
	return st, r.runner.IsRunning(), r.runner.IsFinished(), nil
}
