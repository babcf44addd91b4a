// Package runner drives a Procedure's root instruction through repeated
// ticks, the single-threaded cooperative scheduler of spec.md §4.8/§5:
// only the runner's owning goroutine ever calls Tick, Setup or Reset.
// Breakpoints, Pause and Halt may be set from any goroutine.
package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/oaktree/internal/instr"
	"github.com/ternarybob/oaktree/internal/procedure"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
)

// DefaultBackoff bounds the idle wait between ticks while the root is
// Running, so ExecuteProcedure never busy-loops (§4.8).
const DefaultBackoff = 20 * time.Millisecond

// TickCallback is invoked after every root Tick with a read-only view of
// the procedure (§4.8 SetTickCallback).
type TickCallback func(p *procedure.Procedure)

// Runner ticks a Procedure's root instruction to completion, honoring
// breakpoints, pause, and halt requests that may arrive from other
// goroutines (§4.8, §5).
type Runner struct {
	logger arbor.ILogger
	ui     ui.UserInterface

	mu        sync.Mutex
	procedure *procedure.Procedure
	ticking   bool

	onTick TickCallback

	breakpointsMu sync.Mutex
	breakpoints   map[string]bool

	pauseRequested atomic.Bool
	lastStatus     status.ExecutionStatus
	hasTicked      bool

	limiter *rate.Limiter
}

// New constructs a Runner bound to the given UserInterface.
func New(logger arbor.ILogger, u ui.UserInterface) *Runner {
	return &Runner{
		logger:      logger,
		ui:          u,
		breakpoints: make(map[string]bool),
		limiter:     rate.NewLimiter(rate.Every(DefaultBackoff), 1),
	}
}

// SetProcedure attaches a Procedure. Only valid when not actively ticking.
func (r *Runner) SetProcedure(p *procedure.Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticking {
		return errRunnerBusy
	}
	r.procedure = p
	r.lastStatus = status.NotStarted
	r.hasTicked = false
	return nil
}

// SetTickCallback registers fn to run after every root Tick.
func (r *Runner) SetTickCallback(fn TickCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = fn
}

// SetBreakpoint arms a breakpoint on the named node.
func (r *Runner) SetBreakpoint(nodeID string) {
	r.breakpointsMu.Lock()
	defer r.breakpointsMu.Unlock()
	r.breakpoints[nodeID] = true
}

// RemoveBreakpoint disarms a breakpoint, if present.
func (r *Runner) RemoveBreakpoint(nodeID string) {
	r.breakpointsMu.Lock()
	defer r.breakpointsMu.Unlock()
	delete(r.breakpoints, nodeID)
}

// GetBreakpoints returns currently armed breakpoint node IDs.
func (r *Runner) GetBreakpoints() []string {
	r.breakpointsMu.Lock()
	defer r.breakpointsMu.Unlock()
	out := make([]string, 0, len(r.breakpoints))
	for id := range r.breakpoints {
		out = append(out, id)
	}
	return out
}

func (r *Runner) isArmed(nodeID string) bool {
	r.breakpointsMu.Lock()
	defer r.breakpointsMu.Unlock()
	return r.breakpoints[nodeID]
}

// ExecuteSingle ticks the root exactly once, never blocking on user input
// (a pending Input future simply leaves the instruction Running). Returns
// the resulting status.
func (r *Runner) ExecuteSingle() status.ExecutionStatus {
	r.mu.Lock()
	p := r.procedure
	cb := r.onTick
	r.mu.Unlock()

	if p == nil || p.Root() == nil {
		return status.Failure
	}

	r.mu.Lock()
	r.ticking = true
	r.mu.Unlock()

	st := p.Root().Tick(r.ui, p.Workspace)

	r.mu.Lock()
	r.ticking = false
	r.lastStatus = st
	r.hasTicked = true
	r.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return st
}

// ExecuteProcedure ticks repeatedly until the root reaches a terminal
// status, Pause is requested, Halt is requested, or an armed breakpoint is
// hit on the next node to be ticked. Running results in a bounded
// back-off before the next tick; NotFinished re-ticks immediately (§4.8).
func (r *Runner) ExecuteProcedure(ctx context.Context) status.ExecutionStatus {
	r.mu.Lock()
	p := r.procedure
	r.mu.Unlock()
	if p == nil || p.Root() == nil {
		return status.Failure
	}

	r.pauseRequested.Store(false)

	for {
		if r.pauseRequested.Load() {
			r.pauseRequested.Store(false)
			return r.currentStatus()
		}
		select {
		case <-ctx.Done():
			return r.currentStatus()
		default:
		}

		if next := r.nextNode(p.Root()); next != nil && r.isArmed(next.ID()) {
			return r.currentStatus()
		}

		st := r.ExecuteSingle()
		if st.Terminal() {
			return st
		}
		if st == status.Running {
			if err := r.limiter.Wait(ctx); err != nil {
				return r.currentStatus()
			}
		}
		// NotFinished: loop immediately, no back-off.
	}
}

func (r *Runner) currentStatus() status.ExecutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStatus
}

// nextNode finds the deepest NotStarted or NotFinished leaf via a
// first-non-terminal-child depth-first traversal, the node breakpoints
// test against before it is ticked (§4.8).
func (r *Runner) nextNode(node instr.Instruction) instr.Instruction {
	if node == nil {
		return nil
	}
	st := node.Status()
	if st.Terminal() {
		return nil
	}
	for _, c := range node.Children() {
		if next := r.nextNode(c); next != nil {
			return next
		}
	}
	return node
}

// Pause requests that ExecuteProcedure stop after the current tick. It is
// resumed by a later ExecuteProcedure call.
func (r *Runner) Pause() {
	r.pauseRequested.Store(true)
}

// Halt sets the halt flag on the root, propagating recursively, and
// returns without ticking further. Safe to call from any goroutine.
func (r *Runner) Halt() {
	r.mu.Lock()
	p := r.procedure
	r.mu.Unlock()
	if p != nil && p.Root() != nil {
		p.Root().Halt()
	}
}

// IsRunning reports whether the last observed root status was Running —
// i.e. a descendant is executing asynchronously — not whether a tick is
// currently in progress (§4.8).
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStatus == status.Running
}

// IsFinished reports whether the last observed root status was terminal.
func (r *Runner) IsFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasTicked && r.lastStatus.Terminal()
}

var errRunnerBusy = runnerBusyError{}

type runnerBusyError struct{}

func (runnerBusyError) Error() string { return "runner: cannot reassign procedure while ticking" }
