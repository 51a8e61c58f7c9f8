// Package habit loads habit definitions and records daily check-ins.
package habit

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"reminder/internal/jsonfile"
	appLog "reminder/internal/log"
)

const dateLayout = "2006-01-02"

// Habit is one entry of the [habits] table.
type Habit struct {
	ID   string
	Name string
}

// LoadHabits reads habits.toml. Numeric ids sort numerically, the rest
// after them in lexical order.
func LoadHabits(path string) ([]Habit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Habits map[string]string `toml:"habits"`
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	hs := make([]Habit, 0, len(raw.Habits))
	for id, name := range raw.Habits {
		hs = append(hs, Habit{ID: id, Name: name})
	}
	sort.Slice(hs, func(i, j int) bool {
		a, errA := strconv.Atoi(hs[i].ID)
		b, errB := strconv.Atoi(hs[j].ID)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return hs[i].ID < hs[j].ID
	})
	return hs, nil
}

// Record is one day's check-in in record.json.
type Record struct {
	Date      string            `json:"date"`
	Completed map[string]string `json:"completed"`
	Timestamp time.Time         `json:"timestamp"`
}

// Prompter asks the user which options apply. ok is false on cancel.
// notify.Backend satisfies it.
type Prompter interface {
	Choose(ctx context.Context, title, prompt string, options []string) (selected []string, ok bool, err error)
}

type Tracker struct {
	HabitsPath string
	RecordPath string

	mu sync.Mutex
}

func NewTracker(habitsPath, recordPath string) *Tracker {
	return &Tracker{HabitsPath: habitsPath, RecordPath: recordPath}
}

func (t *Tracker) Habits() ([]Habit, error) {
	return LoadHabits(t.HabitsPath)
}

// Records returns every stored record in file order.
func (t *Tracker) Records() ([]Record, error) {
	var rs []Record
	if _, err := jsonfile.Load(t.RecordPath, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Prompt asks which habits were done today and stores the answer. A
// cancelled prompt stores nothing and returns false; an empty selection is
// a valid answer.
func (t *Tracker) Prompt(ctx context.Context, p Prompter, now time.Time) (bool, error) {
	hs, err := t.Habits()
	if err != nil {
		return false, err
	}
	if len(hs) == 0 {
		appLog.Info("no habits configured", "path", t.HabitsPath)
		return false, nil
	}

	names := make([]string, len(hs))
	for i, h := range hs {
		names[i] = h.Name
	}
	sel, ok, err := p.Choose(ctx, "Habit check-in", "Which habits did you keep today?", names)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	done := map[string]string{}
	for _, s := range sel {
		for _, h := range hs {
			if h.Name == s {
				done[h.ID] = h.Name
				break
			}
		}
	}
	if err := t.Save(Record{Date: now.Format(dateLayout), Completed: done, Timestamp: now}); err != nil {
		return false, err
	}
	return true, nil
}

// Save upserts rec by date.
func (t *Tracker) Save(rec Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rs, err := t.Records()
	if err != nil {
		return err
	}
	replaced := false
	for i := range rs {
		if rs[i].Date == rec.Date {
			rs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		rs = append(rs, rec)
	}
	if err := jsonfile.Save(t.RecordPath, rs); err != nil {
		return fmt.Errorf("save habit records: %w", err)
	}
	return nil
}
