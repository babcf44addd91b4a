// Package history implements the run history / trace sink of
// SPEC_FULL.md §4.11: an append-only, Badger-backed record of instruction
// status transitions and UI messages for a run, keyed by run ID. It is
// diagnostic history for operators, never a mechanism to restore live
// tree state — spec.md §1's non-goal on persisting tree state across
// restarts still holds; a process restart always starts every
// Instruction at NotStarted.
package history

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// Kind classifies one recorded TraceEvent.
type Kind string

const (
	KindStatus   Kind = "status"
	KindVariable Kind = "variable"
	KindMessage  Kind = "message"
	KindLog      Kind = "log"
)

// TraceEvent is one entry in a run's trace (§4.11).
type TraceEvent struct {
	RunID     string    `badgerholdIndex:"RunID"`
	Seq       uint64
	Timestamp time.Time
	Kind      Kind
	NodeType  string
	NodeName  string
	Status    string
	Text      string
}

// Store is the embedded key-value store backing the history sink.
type Store struct {
	db     *badgerhold.Store
	logger arbor.ILogger
	seq    uint64
}

// Open opens (creating if necessary) a Badger-backed history store rooted
// at dir.
func Open(dir string, logger arbor.ILogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("history: create dir %s: %w", dir, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dir, err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records a single TraceEvent, assigning it the next sequence
// number. One counter is shared by every run ID in this Store, so sequence
// numbers are monotonic per run ID (§8) but not contiguous within a run.
func (s *Store) Append(runID string, kind Kind, nodeType, nodeName, status, text string) error {
	seq := atomic.AddUint64(&s.seq, 1)
	event := TraceEvent{
		RunID:     runID,
		Seq:       seq,
		Timestamp: time.Now(),
		Kind:      kind,
		NodeType:  nodeType,
		NodeName:  nodeName,
		Status:    status,
		Text:      text,
	}
	key := fmt.Sprintf("%s_%020d", runID, seq)
	if err := s.db.Insert(key, &event); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// History returns every TraceEvent recorded for runID, ordered by
// sequence number.
func (s *Store) History(runID string) ([]TraceEvent, error) {
	var events []TraceEvent
	query := badgerhold.Where("RunID").Eq(runID).SortBy("Seq")
	if err := s.db.Find(&events, query); err != nil {
		return nil, fmt.Errorf("history: query %s: %w", runID, err)
	}
	return events, nil
}
