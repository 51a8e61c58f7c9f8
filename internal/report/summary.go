// Package report builds weekly and monthly review workbooks from the task
// log and habit records.
package report

import (
	"fmt"
	"time"

	"reminder/internal/habit"
	"reminder/internal/tasks"
)

const dateLayout = "2006-01-02"

type CompletedTask struct {
	tasks.Task
	At time.Time
}

// DayHabits is one row of the habit grid. Completed is nil for days
// without a record.
type DayHabits struct {
	Date      time.Time
	Completed map[string]string
}

type Summary struct {
	Kind   Kind
	Start  time.Time
	End    time.Time
	Tasks  []CompletedTask
	Habits []habit.Habit
	Days   []DayHabits
}

// Build collects the period around target: its Monday-Sunday week or its
// calendar month.
func Build(kind Kind, target time.Time, log []tasks.LogEntry, habits []habit.Habit, records []habit.Record) (Summary, error) {
	var start, end time.Time
	switch kind {
	case Weekly:
		start, end = WeekRange(target)
	case Monthly:
		start, end = MonthRange(target)
	default:
		return Summary{}, fmt.Errorf("unknown report kind %q", kind)
	}
	s := Summary{Kind: kind, Start: start, End: end, Habits: habits}

	until := end.AddDate(0, 0, 1)
	for _, e := range log {
		if e.Action != tasks.ActionDeleted {
			continue
		}
		if !e.Timestamp.Before(start) && e.Timestamp.Before(until) {
			s.Tasks = append(s.Tasks, CompletedTask{Task: e.Task, At: e.Timestamp.In(start.Location())})
		}
	}

	byDate := make(map[string]map[string]string, len(records))
	for _, r := range records {
		byDate[r.Date] = r.Completed
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		s.Days = append(s.Days, DayHabits{Date: d, Completed: byDate[d.Format(dateLayout)]})
	}
	return s, nil
}

// HabitRate returns how many recorded days include habit id, and the
// number of days in the period.
func (s Summary) HabitRate(id string) (done, days int) {
	for _, d := range s.Days {
		if _, ok := d.Completed[id]; ok {
			done++
		}
	}
	return done, len(s.Days)
}

// FileName is weekly_report_YYYYMMDD_YYYYMMDD.xlsx or
// monthly_report_YYYYMM.xlsx.
func (s Summary) FileName() string {
	if s.Kind == Monthly {
		return fmt.Sprintf("monthly_report_%s.xlsx", s.Start.Format("200601"))
	}
	return fmt.Sprintf("weekly_report_%s_%s.xlsx", s.Start.Format("20060102"), s.End.Format("20060102"))
}

func (s Summary) Title() string {
	if s.Kind == Monthly {
		return "Monthly Report: " + s.Start.Format("January 2006")
	}
	return fmt.Sprintf("Weekly Report: %s - %s", s.Start.Format("Jan 02"), s.End.Format("Jan 02, 2006"))
}
