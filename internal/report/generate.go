package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"reminder/internal/habit"
	appLog "reminder/internal/log"
	"reminder/internal/tasks"
)

// Generator writes review workbooks from the task and habit stores.
type Generator struct {
	Dir     string
	Weekly  *Schedule
	Monthly *Schedule
	Tasks   *tasks.Store
	Habits  *habit.Tracker
}

// Generate writes the kind report for the period containing target.
func (g *Generator) Generate(kind Kind, target time.Time) (string, error) {
	log, err := g.Tasks.Log()
	if err != nil {
		return "", fmt.Errorf("read task log: %w", err)
	}

	var hs []habit.Habit
	var recs []habit.Record
	if g.Habits != nil {
		hs, err = g.Habits.Habits()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("read habits: %w", err)
			}
			appLog.Warn("habits file missing; report has no habit data", "path", g.Habits.HabitsPath)
		}
		if recs, err = g.Habits.Records(); err != nil {
			return "", fmt.Errorf("read habit records: %w", err)
		}
	}

	s, err := Build(kind, target, log, hs, recs)
	if err != nil {
		return "", err
	}
	return WriteXLSX(s, g.Dir)
}

// GenerateDue writes the report for the most recent review of each
// configured schedule unless that file already exists, so a review missed
// while the daemon was down is caught up later.
func (g *Generator) GenerateDue(now time.Time) (map[Kind]string, error) {
	out := map[Kind]string{}
	var errs []error
	for _, s := range []*Schedule{g.Weekly, g.Monthly} {
		if s == nil {
			continue
		}
		last := s.Last(now)
		if last.IsZero() {
			continue
		}
		start, _ := s.Period(last)
		probe, err := Build(s.Kind, start, nil, nil, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := os.Stat(filepath.Join(g.Dir, probe.FileName())); err == nil {
			continue
		}
		path, err := g.Generate(s.Kind, start)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s report: %w", s.Kind, err))
			continue
		}
		appLog.Info("report generated", "kind", string(s.Kind), "path", path)
		out[s.Kind] = path
	}
	return out, errors.Join(errs...)
}
