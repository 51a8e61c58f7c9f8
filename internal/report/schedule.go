package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"reminder/internal/schedule"
)

type Kind string

const (
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
)

var weekdayAliases = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

var rruleDays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Schedule is a review time: a weekday for weekly reviews or a day of
// month for monthly ones.
type Schedule struct {
	Kind    Kind
	Weekday time.Weekday
	Day     int
	At      schedule.TimeOfDay
}

// ParseWeekly parses "sunday 20:00".
func ParseWeekly(s string) (Schedule, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Schedule{}, fmt.Errorf("weekly review %q: want weekday and HH:MM, e.g. \"sunday 20:00\"", s)
	}
	wd, ok := weekdayAliases[strings.ToLower(parts[0])]
	if !ok {
		return Schedule{}, fmt.Errorf("weekly review: unknown weekday %q", parts[0])
	}
	at, err := schedule.ParseTimeOfDay(parts[1])
	if err != nil {
		return Schedule{}, fmt.Errorf("weekly review time: %w", err)
	}
	return Schedule{Kind: Weekly, Weekday: wd, At: at}, nil
}

// ParseMonthly parses "1 20:00". Days past the end of a month fall on its
// last day.
func ParseMonthly(s string) (Schedule, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Schedule{}, fmt.Errorf("monthly review %q: want day and HH:MM, e.g. \"1 20:00\"", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return Schedule{}, fmt.Errorf("monthly review: invalid day %q", parts[0])
	}
	if day < 1 || day > 31 {
		return Schedule{}, fmt.Errorf("monthly review day must be between 1 and 31")
	}
	at, err := schedule.ParseTimeOfDay(parts[1])
	if err != nil {
		return Schedule{}, fmt.Errorf("monthly review time: %w", err)
	}
	return Schedule{Kind: Monthly, Day: day, At: at}, nil
}

func (s Schedule) rule(now time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Dtstart:  time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, now.Location()),
		Byhour:   []int{s.At.Hour()},
		Byminute: []int{s.At.Minute()},
		Bysecond: []int{0},
	}
	switch s.Kind {
	case Weekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleDays[s.Weekday]}
	case Monthly:
		opt.Freq = rrule.MONTHLY
		// Pick the last existing day among min(day,28)..day.
		for d := min(s.Day, 28); d <= s.Day; d++ {
			opt.Bymonthday = append(opt.Bymonthday, d)
		}
		opt.Bysetpos = []int{-1}
	default:
		return nil, fmt.Errorf("unknown report kind %q", s.Kind)
	}
	return rrule.NewRRule(opt)
}

// Last returns the latest review time at or before now, in now's location.
func (s Schedule) Last(now time.Time) time.Time {
	r, err := s.rule(now)
	if err != nil {
		return time.Time{}
	}
	return r.Before(now, true)
}

// Due reports whether a review falls on now's minute.
func (s Schedule) Due(now time.Time) bool {
	last := s.Last(now)
	return !last.IsZero() && last.Equal(now.Truncate(time.Minute))
}

// Period returns the inclusive date range a review at last covers: the
// Monday-Sunday week containing it, or the calendar month of the day
// before it (a review on the 1st covers the previous month).
func (s Schedule) Period(last time.Time) (time.Time, time.Time) {
	if s.Kind == Monthly {
		return MonthRange(last.AddDate(0, 0, -1))
	}
	return WeekRange(last)
}

// WeekRange returns Monday and Sunday of t's week.
func WeekRange(t time.Time) (time.Time, time.Time) {
	d := dayStart(t)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, -1)
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
