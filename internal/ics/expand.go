package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "reminder/internal/log"
	"reminder/internal/schedule"
)

const (
	defaultDays = 14
	maxDays     = 366
)

// Occurrence is one schedule event placed on a calendar date.
type Occurrence struct {
	// InstanceKey is stable across exports: block id (or source, time and
	// text for single events) plus the date.
	InstanceKey string

	Summary     string
	Description string
	Kind        schedule.EventKind
	Parity      schedule.Parity

	Start time.Time
	End   time.Time
}

// ExpandConfig controls which dates are expanded.
type ExpandConfig struct {
	// Location places wall-clock schedule times. Nil means time.Local.
	Location *time.Location

	// From is the first date; Days the number of dates from there.
	From time.Time
	Days int
}

type ExpandResult struct {
	Occurrences []Occurrence
	// SkippedDays lists dates dropped by skip_days.
	SkippedDays []time.Time
	// Truncated is set when Days exceeded the cap.
	Truncated bool
}

// ExpandSchedule walks the date range day by day so odd/even rotation and
// skip days apply exactly as they do live. A block becomes one occurrence
// spanning start..end; points and messages last one minute.
func ExpandSchedule(b *schedule.Bundle, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult
	if b == nil {
		return result, errors.New("expand: nil schedule")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Days <= 0 {
		cfg.Days = defaultDays
	}
	if cfg.Days > maxDays {
		appLog.Warn("expand: day range capped", "requested", cfg.Days, "cap", maxDays)
		cfg.Days = maxDays
		result.Truncated = true
	}

	from := cfg.From.In(cfg.Location)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, cfg.Location)
	r, err := rrule.NewRRule(rrule.ROption{Freq: rrule.DAILY, Dtstart: start, Count: cfg.Days})
	if err != nil {
		return result, err
	}

	for _, day := range r.All() {
		ds := b.DaySchedule(day)
		if ds.Skipped && len(ds.Events) == 0 {
			result.SkippedDays = append(result.SkippedDays, day)
			continue
		}
		result.Occurrences = append(result.Occurrences, dayOccurrences(ds, day)...)
	}
	return result, nil
}

func dayOccurrences(ds schedule.DaySchedule, day time.Time) []Occurrence {
	parity := schedule.SelectWeek(day)
	date := day.Format("20060102")
	var out []Occurrence
	for _, e := range ds.Events {
		switch e.Kind {
		case schedule.EventEnd:
			// folded into the start occurrence
			continue
		case schedule.EventStart:
			end, _ := e.At.Add(e.Duration)
			out = append(out, Occurrence{
				InstanceKey: e.BlockID + "-" + date,
				Summary:     e.Title,
				Description: e.Text,
				Kind:        e.Kind,
				Parity:      parity,
				Start:       e.At.On(day),
				End:         end.On(day),
			})
		default:
			startAt := e.At.On(day)
			out = append(out, Occurrence{
				InstanceKey: e.Source + "-" + e.At.String() + "-" + e.Text + "-" + date,
				Summary:     e.Text,
				Kind:        e.Kind,
				Parity:      parity,
				Start:       startAt,
				End:         startAt.Add(time.Minute),
			})
		}
	}
	return out
}
