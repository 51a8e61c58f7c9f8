package ics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminder/internal/deadline"
	"reminder/internal/schedule"
)

const settings = `
[settings]
skip_days = ["sunday"]
[time_blocks]
pomodoro = 25
[time_points]
drink_water = "Drink water"
`

func testBundle(t *testing.T) *schedule.Bundle {
	t.Helper()
	b, err := schedule.Load(schedule.Sources{
		Settings: settings,
		Odd:      "[monday]\n\"09:00\" = \"pomodoro\"\n[common]\n\"10:00\" = \"drink_water\"\n",
		Even:     "[tuesday]\n\"14:00\" = { block = \"pomodoro\", title = \"Deep work\" }\n",
	})
	require.NoError(t, err)
	return b
}

func TestExpandSchedule(t *testing.T) {
	b := testBundle(t)
	// Mon 2026-10-19 (week 43, odd) through Sun 2026-10-25.
	res, err := ExpandSchedule(b, ExpandConfig{
		Location: time.UTC,
		From:     time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC),
		Days:     7,
	})
	require.NoError(t, err)

	require.Len(t, res.SkippedDays, 1)
	assert.Equal(t, time.Sunday, res.SkippedDays[0].Weekday())

	// Monday: pomodoro + drink_water; Tue..Sat: drink_water only.
	require.Len(t, res.Occurrences, 7)
	first := res.Occurrences[0]
	assert.Equal(t, "pomodoro", first.Summary)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 25, 0, 0, time.UTC), first.End)
	assert.Equal(t, schedule.Odd, first.Parity)

	water := res.Occurrences[1]
	assert.Equal(t, "Drink water", water.Summary)
	assert.Equal(t, time.Minute, water.End.Sub(water.Start))

	keys := map[string]bool{}
	for _, o := range res.Occurrences {
		assert.False(t, keys[o.InstanceKey], "duplicate key %s", o.InstanceKey)
		keys[o.InstanceKey] = true
	}
}

func TestExpandScheduleEvenWeek(t *testing.T) {
	b := testBundle(t)
	res, err := ExpandSchedule(b, ExpandConfig{
		Location: time.UTC,
		From:     time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC), // Tuesday, week 44
		Days:     1,
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, "Deep work", res.Occurrences[0].Summary)
	assert.Equal(t, schedule.Even, res.Occurrences[0].Parity)
}

func TestExpandScheduleCapsDays(t *testing.T) {
	res, err := ExpandSchedule(testBundle(t), ExpandConfig{Location: time.UTC, From: time.Now(), Days: 5000})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
}

func TestCalendarRoundTrip(t *testing.T) {
	b := testBundle(t)
	res, err := ExpandSchedule(b, ExpandConfig{
		Location: time.UTC,
		From:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Days:     1,
	})
	require.NoError(t, err)

	stamp := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	cal := NewCalendar(res.Occurrences, stamp)
	AddDeadlines(cal, []deadline.Deadline{{Event: "tax", Deadline: deadline.NewDate(2026, 11, 2)}}, stamp)

	path := filepath.Join(t.TempDir(), "out", "schedule.ics")
	require.NoError(t, Write(cal, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	parsed, err := ical.ParseCalendar(f)
	require.NoError(t, err)

	events := parsed.Events()
	require.Len(t, events, 3)

	var summaries []string
	for _, ev := range events {
		summaries = append(summaries, ev.GetProperty(ical.ComponentPropertySummary).Value)
	}
	assert.ElementsMatch(t, []string{"pomodoro", "Drink water", "DDL: tax"}, summaries)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)))

	body := cal.Serialize()
	assert.True(t, strings.Contains(body, "VALUE=DATE"))
	assert.True(t, strings.Contains(body, ":20261102"))
}
