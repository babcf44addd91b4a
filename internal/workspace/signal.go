package workspace

import (
	"sync/atomic"

	"github.com/ternarybob/oaktree/internal/value"
)

// ChangeSignal is the dirty flag called for by §5, held in two atomic
// counters rather than under a lock: a
// background dispatcher goroutine calls NotifyListener (which only bumps a
// counter), and the tick thread calls Consume to check and clear it,
// without ever running instruction logic off the tick thread.
type ChangeSignal struct {
	counter  atomic.Uint64
	consumed atomic.Uint64
}

// NotifyListener adapts ChangeSignal to the Listener signature so it can be
// passed directly to Workspace.Subscribe.
func (s *ChangeSignal) NotifyListener(_ string, _ value.Value, _ bool) {
	s.counter.Add(1)
}

// Consume reports whether a change has occurred since the last Consume
// call, and clears the pending flag.
func (s *ChangeSignal) Consume() bool {
	n := s.counter.Load()
	prev := s.consumed.Swap(n)
	return n != prev
}
