// Package deadline keeps dated events in ddl.json.
package deadline

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"reminder/internal/jsonfile"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound      = errors.New("deadline not found")
	ErrInvalidFormat = errors.New("invalid date format, use M.D (e.g. 7.4)")
	ErrMonthRange    = errors.New("month must be between 1 and 12")
	ErrDayRange      = errors.New("day must be between 1 and 31")
)

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(dateLayout, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON and UnmarshalJSON shadow the promoted time.Time methods.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

type Deadline struct {
	Event    string    `json:"event"`
	Deadline Date      `json:"deadline"`
	Added    time.Time `json:"added"`
}

// ParseMonthDay parses "M.D" into the next occurrence on or after today:
// this year unless the date has passed, then next year.
func ParseMonthDay(s string, today time.Time) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Date{}, ErrInvalidFormat
	}
	m, err1 := strconv.Atoi(parts[0])
	d, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return Date{}, ErrInvalidFormat
	}
	if m < 1 || m > 12 {
		return Date{}, ErrMonthRange
	}
	if d < 1 || d > 31 {
		return Date{}, ErrDayRange
	}

	t := dayOf(today)
	for _, y := range []int{t.Year(), t.Year() + 1} {
		c := NewDate(y, time.Month(m), d)
		if c.Month() != time.Month(m) {
			// Feb 30 and friends; Feb 29 may still exist next year.
			continue
		}
		if !c.Before(t.Time) {
			return c, nil
		}
	}
	if d == 29 && m == 2 {
		for y := t.Year() + 2; y <= t.Year()+8; y++ {
			if c := NewDate(y, time.February, 29); c.Month() == time.February {
				return c, nil
			}
		}
	}
	return Date{}, fmt.Errorf("%d.%d is not a calendar date", m, d)
}

func dayOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// DaysLeft counts calendar days from today to the deadline; negative when
// overdue.
func (dl Deadline) DaysLeft(today time.Time) int {
	return int(dl.Deadline.Sub(dayOf(today).Time).Hours() / 24)
}

type Urgency string

const (
	Overdue Urgency = "overdue"
	Today   Urgency = "today"
	Urgent  Urgency = "urgent"
	Soon    Urgency = "soon"
	OK      Urgency = "ok"
)

func UrgencyFor(daysLeft int) Urgency {
	switch {
	case daysLeft < 0:
		return Overdue
	case daysLeft == 0:
		return Today
	case daysLeft <= 3:
		return Urgent
	case daysLeft <= 7:
		return Soon
	}
	return OK
}

type Store struct {
	Path string
	Now  func() time.Time

	mu sync.Mutex
}

func NewStore(path string) *Store { return &Store{Path: path} }

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) load() ([]Deadline, error) {
	var ds []Deadline
	if _, err := jsonfile.Load(s.Path, &ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// List returns deadlines by date, soonest first.
func (s *Store) List() ([]Deadline, error) {
	ds, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Deadline.Before(ds[j].Deadline.Time) })
	return ds, nil
}

// Add stores event at the date parsed from monthDay, replacing an existing
// entry with the same event name. It returns the stored deadline and whether
// an entry was replaced.
func (s *Store) Add(event, monthDay string) (Deadline, bool, error) {
	if event == "" {
		return Deadline{}, false, errors.New("event is empty")
	}
	now := s.now()
	date, err := ParseMonthDay(monthDay, now)
	if err != nil {
		return Deadline{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.load()
	if err != nil {
		return Deadline{}, false, err
	}
	dl := Deadline{Event: event, Deadline: date, Added: now.UTC().Truncate(time.Second)}
	updated := false
	for i := range ds {
		if ds[i].Event == event {
			ds[i] = dl
			updated = true
			break
		}
	}
	if !updated {
		ds = append(ds, dl)
	}
	if err := jsonfile.Save(s.Path, ds); err != nil {
		return Deadline{}, false, fmt.Errorf("save deadlines: %w", err)
	}
	return dl, updated, nil
}

// Remove deletes the named events. Unknown names are returned as failures
// while the others are still removed.
func (s *Store) Remove(events ...string) (removed []string, failures []error, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	for _, ev := range events {
		n := len(ds)
		kept := ds[:0:0]
		for _, d := range ds {
			if d.Event != ev {
				kept = append(kept, d)
			}
		}
		if len(kept) == n {
			failures = append(failures, fmt.Errorf("%w: %q", ErrNotFound, ev))
			continue
		}
		ds = kept
		removed = append(removed, ev)
	}
	if len(removed) == 0 {
		return nil, failures, nil
	}
	if err := jsonfile.Save(s.Path, ds); err != nil {
		return nil, failures, fmt.Errorf("save deadlines: %w", err)
	}
	return removed, failures, nil
}
