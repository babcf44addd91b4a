package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func testLogger() arbor.ILogger { return arbor.NewLogger() }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "history")
	s, err := Open(dir, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppend_AssignsMonotonicSequencePerRunID(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Append("run-a", KindMessage, "", "", "", "first"))
	require.NoError(t, s.Append("run-a", KindMessage, "", "", "", "second"))
	require.NoError(t, s.Append("run-b", KindMessage, "", "", "", "other run"))

	events, err := s.History("run-a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Less(t, events[0].Seq, events[1].Seq)
	assert.Equal(t, "first", events[0].Text)
	assert.Equal(t, "second", events[1].Text)
}

func TestHistory_ScopedToRunID(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Append("run-a", KindStatus, "Sequence", "root", "Success", ""))
	require.NoError(t, s.Append("run-b", KindStatus, "Sequence", "root", "Failure", ""))

	events, err := s.History("run-b")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Failure", events[0].Status)
}

func TestHistory_UnknownRunIDReturnsEmpty(t *testing.T) {
	s := openTestStore(t)

	events, err := s.History("never-submitted")
	require.NoError(t, err)
	assert.Empty(t, events)
}
