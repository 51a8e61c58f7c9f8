package schedule

import "time"

// SelectWeek picks the weekly file for date by ISO 8601 week parity.
func SelectWeek(date time.Time) Parity {
	_, w := date.ISOWeek()
	if w%2 == 1 {
		return Odd
	}
	return Even
}

// Week returns the parsed weekly file for p.
func (b *Bundle) Week(p Parity) Week {
	if p == Even {
		return b.Even
	}
	return b.Odd
}

// DaySchedule returns the compiled schedule that applies on date. The
// returned events are shared and must not be modified.
func (b *Bundle) DaySchedule(date time.Time) DaySchedule {
	return b.compiled[SelectWeek(date)][date.Weekday()]
}

// WeekSchedule returns all seven compiled days of one parity, Sunday first.
func (b *Bundle) WeekSchedule(p Parity) [7]DaySchedule {
	return b.compiled[p]
}
