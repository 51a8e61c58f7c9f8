package schedule

import (
	"fmt"
	"time"
)

// MinutesPerDay bounds TimeOfDay: valid values are [0, MinutesPerDay).
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock minute, counted from midnight.
type TimeOfDay int

// ParseTimeOfDay parses the strict "HH:MM" form used as schedule keys.
// Single-digit hours ("9:00") are rejected so that parse/format round-trips.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%q: want HH:MM", s)
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%q: want HH:MM", s)
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%q: out of range 00:00-23:59", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf truncates t to the minute in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Add returns t shifted by minutes. ok is false when the result leaves the
// day it started in.
func (t TimeOfDay) Add(minutes int) (TimeOfDay, bool) {
	n := int(t) + minutes
	if n < 0 || n >= MinutesPerDay {
		return 0, false
	}
	return TimeOfDay(n), true
}

// On places t on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
