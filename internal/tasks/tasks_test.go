package tasks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "tasks", "tasks.json"), filepath.Join(dir, "tasks", "tasks.log"))
	clock := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return clock }
	return s
}

func TestAddAndList(t *testing.T) {
	s := newTestStore(t)

	ts, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, ts)

	for _, a := range []struct {
		d string
		p int
	}{{"write report", 5}, {"pay rent", 9}, {"water plants", 2}, {"call mom", 5}} {
		_, err := s.Add(a.d, a.p)
		require.NoError(t, err)
	}

	ts, err = s.List()
	require.NoError(t, err)
	require.Len(t, ts, 4)
	assert.Equal(t, "pay rent", ts[0].Description)
	assert.Equal(t, "write report", ts[1].Description, "equal priorities keep insertion order")
	assert.Equal(t, "call mom", ts[2].Description)
	assert.Equal(t, "water plants", ts[3].Description)

	urgent, err := s.Urgent(8)
	require.NoError(t, err)
	assert.Equal(t, []Task{{Description: "pay rent", Priority: 9}}, urgent)
}

func TestAddUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("pay rent", 3)
	require.NoError(t, err)

	res, err := s.Add("pay rent", 9)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 3, res.OldPriority)

	ts, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []Task{{Description: "pay rent", Priority: 9}}, ts)

	log, err := s.Log()
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, ActionAdded, log[0].Action)
	assert.Equal(t, ActionUpdated, log[1].Action)
	assert.EqualValues(t, 3, log[1].Metadata["old_priority"])
}

func TestAddRejectsBadPriority(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("x", 0)
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = s.Add("x", -1)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestRemoveByIDAndDescription(t *testing.T) {
	s := newTestStore(t)
	for d, p := range map[string]int{"a": 1, "b": 5, "c": 9} {
		_, err := s.Add(d, p)
		require.NoError(t, err)
	}

	// ids refer to the listing before removal: 1=c, 2=b, 3=a
	res, err := s.Remove("1", "3", "b", "nope", "7")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Task{{"c", 9}, {"a", 1}, {"b", 5}}, res.Removed)
	require.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Failures[0], ErrNotFound)
	assert.ErrorIs(t, res.Failures[1], ErrInvalidID)

	ts, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, ts)

	done, err := s.CompletedOn(time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []Task{{"c", 9}, {"b", 5}, {"a", 1}}, done)

	done, err = s.CompletedOn(time.Date(2026, 10, 20, 22, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestRemoveNothingMatched(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("a", 1)
	require.NoError(t, err)

	res, err := s.Remove("zzz")
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	assert.Len(t, res.Failures, 1)

	ts, err := s.List()
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestCorruptTasksFileIsAnError(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.TasksPath), 0o700))
	require.NoError(t, os.WriteFile(s.TasksPath, []byte("{not json"), 0o600))

	_, err := s.List()
	assert.Error(t, err)
	_, err = s.Add("x", 1)
	assert.Error(t, err)
}

func TestCompletedBetweenUsesInstant(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	entries := []LogEntry{
		// 23:30 UTC on the 18th is 08:30 on the 19th in Seoul.
		{Timestamp: time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC), Action: ActionDeleted, Task: Task{"early", 1}},
		{Timestamp: time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC), Action: ActionDeleted, Task: Task{"late", 1}},
		{Timestamp: time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC), Action: ActionAdded, Task: Task{"added", 1}},
	}
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, seoul)
	got := CompletedBetween(entries, from, from.AddDate(0, 0, 1))
	assert.Equal(t, []Task{{"early", 1}}, got)
}
