package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminder/internal/habit"
	"reminder/internal/notify"
	"reminder/internal/schedule"
	"reminder/internal/tasks"
)

const settingsTOML = `
[settings]
sound_file = ""
alarm_interval = 1
max_alarm_duration = 2
skip_days = ["saturday"]

[time_blocks]
pomodoro = 25

[tasks]
daily_summary = "22:00"
daily_urgent = ["10:00"]
habit_prompt = "21:30"
urgent_priority = 8
`

const oddTOML = `
[monday]
"09:00" = "pomodoro"

[common]
"12:00" = "Lunch time"
`

const evenTOML = `
[common]
"12:00" = "Lunch time"
`

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	for name, body := range map[string]string{
		schedule.SettingsFile: settingsTOML,
		schedule.OddWeekFile:  oddTOML,
		schedule.EvenWeekFile: evenTOML,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
}

func newRunner(t *testing.T, backend notify.Backend) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir)
	h, err := schedule.NewHolder(dir)
	require.NoError(t, err)
	return New(h, backend, Options{Location: time.UTC}), dir
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func kinds(as []Alert) []AlertKind {
	var out []AlertKind
	for _, a := range as {
		out = append(out, a.Kind)
	}
	return out
}

func TestTickFiresOncePerDay(t *testing.T) {
	r, _ := newRunner(t, notify.Log{})

	// 2026-10-19 is a Monday in ISO week 43.
	got := r.Tick(at(2026, 10, 19, 9, 0))
	require.Len(t, got, 1)
	assert.Equal(t, AlertEvent, got[0].Kind)
	assert.Equal(t, "Start", got[0].Title)
	assert.Equal(t, "pomodoro (25min)", got[0].Message)

	assert.Empty(t, r.Tick(at(2026, 10, 19, 9, 0).Add(30*time.Second)))

	end := r.Tick(at(2026, 10, 19, 9, 25))
	require.Len(t, end, 1)
	assert.Equal(t, "End", end[0].Title)

	// Two weeks later is odd again and the fired set has been reset.
	again := r.Tick(at(2026, 11, 2, 9, 0))
	require.Len(t, again, 1)
	assert.Equal(t, got[0].Key, again[0].Key)
}

func TestTickUsesLocation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	h, err := schedule.NewHolder(dir)
	require.NoError(t, err)
	loc := time.FixedZone("UTC+2", 2*3600)
	r := New(h, notify.Log{}, Options{Location: loc})

	got := r.Tick(at(2026, 10, 19, 7, 0))
	require.Len(t, got, 1)
	assert.Equal(t, AlertEvent, got[0].Kind)
}

func TestTickUrgentAndSummary(t *testing.T) {
	r, dir := newRunner(t, notify.Log{})

	// Nothing urgent yet.
	assert.Empty(t, r.Tick(at(2026, 10, 19, 10, 0)))

	store := tasks.NewStore(filepath.Join(dir, "tasks", "tasks.json"), filepath.Join(dir, "tasks", "tasks.log"))
	_, err := store.Add("file taxes", 9)
	require.NoError(t, err)
	_, err = store.Add("water plants", 2)
	require.NoError(t, err)

	urgent := r.Tick(at(2026, 10, 20, 10, 0))
	require.Len(t, urgent, 1)
	assert.Equal(t, AlertUrgent, urgent[0].Kind)
	assert.Contains(t, urgent[0].Message, "file taxes")
	assert.NotContains(t, urgent[0].Message, "water plants")

	summary := r.Tick(at(2026, 10, 20, 22, 0))
	require.Len(t, summary, 1)
	assert.Equal(t, AlertSummary, summary[0].Kind)
	assert.Equal(t, "Daily summary", summary[0].Title)
}

func TestTickSkipDay(t *testing.T) {
	r, dir := newRunner(t, notify.Log{})
	store := tasks.NewStore(filepath.Join(dir, "tasks", "tasks.json"), filepath.Join(dir, "tasks", "tasks.log"))
	_, err := store.Add("file taxes", 9)
	require.NoError(t, err)

	// 2026-10-24 is a Saturday.
	assert.Empty(t, r.Tick(at(2026, 10, 24, 12, 0)))
	assert.Empty(t, r.Tick(at(2026, 10, 24, 10, 0)))
	assert.Empty(t, r.Tick(at(2026, 10, 24, 22, 0)))

	// Habit prompts still run on skip days.
	assert.Equal(t, []AlertKind{AlertHabit}, kinds(r.Tick(at(2026, 10, 24, 21, 30))))
}

func TestRunOnceDispatches(t *testing.T) {
	r, _ := newRunner(t, notify.Log{})
	got := r.RunOnce(context.Background(), at(2026, 10, 21, 12, 0))
	require.Len(t, got, 1)
	assert.Equal(t, "Lunch time", got[0].Message)
	assert.Equal(t, "Reminder", got[0].Title)
}

type chooser struct {
	notify.Log
	pick []string
}

func (c chooser) Choose(context.Context, string, string, []string) ([]string, bool, error) {
	return c.pick, true, nil
}

func TestRunOnceHabitPrompt(t *testing.T) {
	r, dir := newRunner(t, chooser{pick: []string{"Read"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "habits.toml"),
		[]byte("[habits]\n1 = \"Exercise\"\n2 = \"Read\"\n"), 0o600))

	got := r.RunOnce(context.Background(), at(2026, 10, 21, 21, 30))
	require.Equal(t, []AlertKind{AlertHabit}, kinds(got))

	recs, err := habit.NewTracker(filepath.Join(dir, "habits.toml"), filepath.Join(dir, "tasks", "record.json")).Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2026-10-21", recs[0].Date)
	assert.Equal(t, map[string]string{"2": "Read"}, recs[0].Completed)
}

func TestReloadKeepsScheduleOnError(t *testing.T) {
	r, dir := newRunner(t, notify.Log{})
	before := r.Holder().Get()

	require.NoError(t, os.WriteFile(filepath.Join(dir, schedule.OddWeekFile),
		[]byte("[monday]\n\"9am\" = \"pomodoro\"\n"), 0o600))

	require.Error(t, r.Reload())
	assert.Same(t, before, r.Holder().Get())
	assert.Len(t, r.Tick(at(2026, 10, 19, 9, 0)), 1)

	writeConfig(t, dir)
	require.NoError(t, r.Reload())
	assert.NotSame(t, before, r.Holder().Get())
}

func TestStartStopsWithContext(t *testing.T) {
	r, _ := newRunner(t, notify.Log{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	h, err := schedule.NewHolder(dir)
	require.NoError(t, err)
	r := New(h, notify.Log{}, Options{TickSpec: "every minute"})
	assert.Error(t, r.Start(context.Background()))
}
