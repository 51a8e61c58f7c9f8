// Package tasks keeps the prioritized task list and its action log.
package tasks

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"reminder/internal/jsonfile"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrInvalidID       = errors.New("invalid task id")
	ErrInvalidPriority = errors.New("priority must be a positive integer")
)

type Task struct {
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// LogEntry is one line of tasks.log. A deleted task counts as completed.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Action    Action         `json:"action"`
	Task      Task           `json:"task"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Store reads and writes tasks.json and tasks.log.
type Store struct {
	TasksPath string
	LogPath   string
	// Now stamps log entries; nil means time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func NewStore(tasksPath, logPath string) *Store {
	return &Store{TasksPath: tasksPath, LogPath: logPath}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) load() ([]Task, error) {
	var ts []Task
	if _, err := jsonfile.Load(s.TasksPath, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// List returns tasks by descending priority. Equal priorities keep file
// order. Position i is task id i+1.
func (s *Store) List() ([]Task, error) {
	ts, err := s.load()
	if err != nil {
		return nil, err
	}
	sortByPriority(ts)
	return ts, nil
}

func sortByPriority(ts []Task) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Priority > ts[j].Priority })
}

// Urgent returns tasks with priority >= min, highest first.
func (s *Store) Urgent(min int) ([]Task, error) {
	ts, err := s.List()
	if err != nil {
		return nil, err
	}
	out := ts[:0]
	for _, t := range ts {
		if t.Priority >= min {
			out = append(out, t)
		}
	}
	return out, nil
}

// AddResult tells whether Add replaced an existing task.
type AddResult struct {
	Updated     bool
	OldPriority int
}

// Add inserts a task or, when the description exists, replaces its priority.
func (s *Store) Add(description string, priority int) (AddResult, error) {
	if priority <= 0 {
		return AddResult{}, ErrInvalidPriority
	}
	if description == "" {
		return AddResult{}, errors.New("task description is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts, err := s.load()
	if err != nil {
		return AddResult{}, err
	}

	task := Task{Description: description, Priority: priority}
	var res AddResult
	found := false
	for i := range ts {
		if ts[i].Description == description {
			res = AddResult{Updated: true, OldPriority: ts[i].Priority}
			ts[i] = task
			found = true
			break
		}
	}
	if !found {
		ts = append(ts, task)
	}

	if err := jsonfile.Save(s.TasksPath, ts); err != nil {
		return AddResult{}, fmt.Errorf("save tasks: %w", err)
	}
	if res.Updated {
		err = s.appendLog(LogEntry{Action: ActionUpdated, Task: task, Metadata: map[string]any{"old_priority": res.OldPriority}})
	} else {
		err = s.appendLog(LogEntry{Action: ActionAdded, Task: task})
	}
	if err != nil {
		return res, fmt.Errorf("log task: %w", err)
	}
	return res, nil
}

// RemoveResult reports what Remove did per identifier.
type RemoveResult struct {
	Removed  []Task
	Failures []error
}

// Remove deletes tasks named by 1-based id (from List order, taken before
// any removal) or by description. Identifiers that do not match are
// collected in Failures; the rest are still applied.
func (s *Store) Remove(identifiers ...string) (RemoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, err := s.load()
	if err != nil {
		return RemoveResult{}, err
	}
	snapshot := append([]Task(nil), ts...)
	sortByPriority(snapshot)

	var res RemoveResult
	for _, ident := range identifiers {
		desc := ident
		if id, err := strconv.Atoi(ident); err == nil {
			if id < 1 || id > len(snapshot) {
				res.Failures = append(res.Failures, fmt.Errorf("%w: %d (have 1-%d)", ErrInvalidID, id, len(snapshot)))
				continue
			}
			desc = snapshot[id-1].Description
		}

		kept := ts[:0:0]
		var removed []Task
		for _, t := range ts {
			if t.Description == desc {
				removed = append(removed, t)
			} else {
				kept = append(kept, t)
			}
		}
		if len(removed) == 0 {
			res.Failures = append(res.Failures, fmt.Errorf("%w: %q", ErrNotFound, desc))
			continue
		}
		ts = kept
		res.Removed = append(res.Removed, removed...)
	}

	if len(res.Removed) == 0 {
		return res, nil
	}
	if err := jsonfile.Save(s.TasksPath, ts); err != nil {
		return res, fmt.Errorf("save tasks: %w", err)
	}
	for _, t := range res.Removed {
		if err := s.appendLog(LogEntry{Action: ActionDeleted, Task: t}); err != nil {
			return res, fmt.Errorf("log task: %w", err)
		}
	}
	return res, nil
}

func (s *Store) appendLog(e LogEntry) error {
	if s.LogPath == "" {
		return nil
	}
	entries, err := s.Log()
	if err != nil {
		return err
	}
	e.Timestamp = s.now().UTC()
	entries = append(entries, e)
	return jsonfile.Save(s.LogPath, entries)
}

// Log returns every recorded action, oldest first.
func (s *Store) Log() ([]LogEntry, error) {
	var entries []LogEntry
	if s.LogPath == "" {
		return nil, nil
	}
	if _, err := jsonfile.Load(s.LogPath, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CompletedOn returns tasks deleted on day's calendar date, evaluated in
// day's location, highest priority first.
func (s *Store) CompletedOn(day time.Time) ([]Task, error) {
	entries, err := s.Log()
	if err != nil {
		return nil, err
	}
	return CompletedBetween(entries, startOfDay(day), startOfDay(day).AddDate(0, 0, 1)), nil
}

// CompletedBetween filters deletions with from <= timestamp < to.
func CompletedBetween(entries []LogEntry, from, to time.Time) []Task {
	var out []Task
	for _, e := range entries {
		if e.Action != ActionDeleted {
			continue
		}
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e.Task)
		}
	}
	sortByPriority(out)
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
