package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSettings = `
[settings]
alarm_interval = 10
skip_days = ["saturday"]

[time_blocks]
pomodoro = 25
meeting = 50
nap = 30

[time_points]
drink_water = "Drink a glass of water"

[tasks]
daily_urgent = ["10:00", "20:00"]
habit_prompt = "21:30"
`

const testOdd = `
[monday]
"09:00" = "pomodoro"
"09:15" = { block = "meeting", title = "Standup" }

[common]
"09:00" = "drink_water"
"12:00" = "Lunch time"
"23:30" = { message = "Go to bed" }
`

const testEven = `
[tuesday]
"14:00" = "nap"
`

func loadTest(t *testing.T, settings, odd, even string) *Bundle {
	t.Helper()
	b, err := Load(Sources{Settings: settings, Odd: odd, Even: even})
	require.NoError(t, err)
	return b
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m++ {
		s := TimeOfDay(m).String()
		got, err := ParseTimeOfDay(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, got.String())
	}
}

func TestParseTimeOfDayRejects(t *testing.T) {
	for _, s := range []string{"", "9:00", "24:00", "12:60", "12-00", "ab:cd", "12:000", " 9:00"} {
		_, err := ParseTimeOfDay(s)
		assert.Error(t, err, s)
	}
}

func TestTimeOfDayAdd(t *testing.T) {
	end, ok := MustTimeOfDay("09:00").Add(25)
	require.True(t, ok)
	assert.Equal(t, "09:25", end.String())

	_, ok = MustTimeOfDay("23:40").Add(20)
	assert.False(t, ok)
}

func TestSelectWeek(t *testing.T) {
	cases := []struct {
		date string
		want Parity
	}{
		{"2024-01-01", Odd},  // week 1 of 2024
		{"2024-12-30", Odd},  // week 1 of 2025
		{"2021-01-03", Odd},  // week 53 of 2020
		{"2021-01-04", Odd},  // week 1 of 2021
		{"2021-01-11", Even}, // week 2
		{"2026-10-19", Odd},  // week 43
	}
	for _, c := range cases {
		d, err := time.Parse("2006-01-02", c.date)
		require.NoError(t, err)
		assert.Equal(t, c.want, SelectWeek(d), c.date)
	}

	// Week 1 is always odd, whatever weekday Jan 4th falls on.
	for y := 2000; y < 2040; y++ {
		jan4 := time.Date(y, time.January, 4, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, Odd, SelectWeek(jan4), y)
	}
}

func TestCompileBlockPair(t *testing.T) {
	blocks := map[string]int{"pomodoro": 25}
	day := Section{{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: BlockRef, Name: "pomodoro"}}}

	ds, err := CompileDay(time.Monday, day, nil, blocks, nil, Settings{})
	require.NoError(t, err)
	require.Len(t, ds.Events, 2)

	start, end := ds.Events[0], ds.Events[1]
	assert.Equal(t, EventStart, start.Kind)
	assert.Equal(t, "09:00", start.At.String())
	assert.Equal(t, EventEnd, end.Kind)
	assert.Equal(t, "09:25", end.At.String())
	assert.NotEmpty(t, start.BlockID)
	assert.Equal(t, start.BlockID, end.BlockID)
	assert.Equal(t, "pomodoro (25min)", start.Text)
}

func TestCompileMergeOrder(t *testing.T) {
	blocks := map[string]int{"pomodoro": 25}
	points := map[string]string{"drink_water": "Drink a glass of water"}
	day := Section{{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: BlockRef, Name: "pomodoro"}}}
	common := Section{{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: PointRef, Name: "drink_water"}}}

	ds, err := CompileDay(time.Monday, day, common, blocks, points, Settings{})
	require.NoError(t, err)
	require.Len(t, ds.Events, 3)

	assert.Equal(t, EventStart, ds.Events[0].Kind)
	assert.Equal(t, "monday", ds.Events[0].Source)
	assert.Equal(t, EventPoint, ds.Events[1].Kind)
	assert.Equal(t, CommonSection, ds.Events[1].Source)
	assert.Equal(t, "Drink a glass of water", ds.Events[1].Text)
	assert.Equal(t, EventEnd, ds.Events[2].Kind)
	assert.Equal(t, "09:25", ds.Events[2].At.String())
}

func TestCompileMidnightCrossing(t *testing.T) {
	blocks := map[string]int{"nap": 30}
	day := Section{{At: MustTimeOfDay("23:45"), Entry: Entry{Kind: BlockRef, Name: "nap"}}}

	_, err := CompileDay(time.Friday, day, nil, blocks, nil, Settings{})
	require.ErrorIs(t, err, ErrMidnightCrossing)
}

func TestCompileSkipPolicy(t *testing.T) {
	day := Section{{At: MustTimeOfDay("08:00"), Entry: Entry{Kind: DirectMessage, Text: "day"}}}
	common := Section{{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: DirectMessage, Text: "common"}}}
	skip := map[time.Weekday]bool{time.Sunday: true}

	ds, err := CompileDay(time.Sunday, day, common, nil, nil, Settings{SkipDays: skip, SkipMode: SkipAll})
	require.NoError(t, err)
	assert.True(t, ds.Skipped)
	assert.Empty(t, ds.Events)

	ds, err = CompileDay(time.Sunday, day, common, nil, nil, Settings{SkipDays: skip, SkipMode: SkipDayOnly})
	require.NoError(t, err)
	assert.True(t, ds.Skipped)
	require.Len(t, ds.Events, 1)
	assert.Equal(t, "common", ds.Events[0].Text)
}

func TestCompileSkippedDayStillValidates(t *testing.T) {
	day := Section{{At: MustTimeOfDay("23:50"), Entry: Entry{Kind: BlockRef, Name: "nap"}}}
	skip := map[time.Weekday]bool{time.Sunday: true}

	_, err := CompileDay(time.Sunday, day, nil, map[string]int{"nap": 30}, nil, Settings{SkipDays: skip})
	assert.ErrorIs(t, err, ErrMidnightCrossing)
}

func TestFindOverlaps(t *testing.T) {
	blocks := map[string]int{"pomodoro": 25, "meeting": 50}
	day := Section{
		{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: BlockRef, Name: "pomodoro"}},
		{At: MustTimeOfDay("09:15"), Entry: Entry{Kind: BlockRef, Name: "meeting"}},
	}
	ds, err := CompileDay(time.Monday, day, nil, blocks, nil, Settings{})
	require.NoError(t, err)

	overlaps := FindOverlaps(ds)
	require.Len(t, overlaps, 1)
	assert.Equal(t, "pomodoro", overlaps[0].A.Ref)
	assert.Equal(t, "meeting", overlaps[0].B.Ref)
	assert.Equal(t, "09:25", overlaps[0].AEnd.String())
}

func TestFindOverlapsAdjacentBlocks(t *testing.T) {
	blocks := map[string]int{"pomodoro": 25}
	day := Section{
		{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: BlockRef, Name: "pomodoro"}},
		{At: MustTimeOfDay("09:25"), Entry: Entry{Kind: BlockRef, Name: "pomodoro"}},
	}
	ds, err := CompileDay(time.Monday, day, nil, blocks, nil, Settings{})
	require.NoError(t, err)
	assert.Empty(t, FindOverlaps(ds))
}

func TestEventsAt(t *testing.T) {
	blocks := map[string]int{"pomodoro": 25}
	day := Section{{At: MustTimeOfDay("09:00"), Entry: Entry{Kind: BlockRef, Name: "pomodoro"}}}
	ds, err := CompileDay(time.Monday, day, nil, blocks, nil, Settings{})
	require.NoError(t, err)

	got := ds.EventsAt(MustTimeOfDay("09:25"))
	require.Len(t, got, 1)
	assert.Equal(t, EventEnd, got[0].Kind)

	assert.Empty(t, ds.EventsAt(MustTimeOfDay("09:10")))
}

func TestNextStopsAtDayEnd(t *testing.T) {
	day := Section{
		{At: MustTimeOfDay("08:00"), Entry: Entry{Kind: DirectMessage, Text: "a"}},
		{At: MustTimeOfDay("23:30"), Entry: Entry{Kind: DirectMessage, Text: "b"}},
	}
	ds, err := CompileDay(time.Monday, day, nil, nil, nil, Settings{})
	require.NoError(t, err)

	got := ds.Next(MustTimeOfDay("22:00"), 3)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Text)

	assert.Empty(t, ds.Next(MustTimeOfDay("23:59"), 3))
	assert.Len(t, ds.Next(MustTimeOfDay("07:00"), 3), 2)
	assert.Empty(t, ds.Next(MustTimeOfDay("07:00"), 0))
}

func TestCurrent(t *testing.T) {
	day := Section{{At: MustTimeOfDay("08:00"), Entry: Entry{Kind: DirectMessage, Text: "a"}}}
	ds, err := CompileDay(time.Monday, day, nil, nil, nil, Settings{})
	require.NoError(t, err)

	_, ok := ds.Current(MustTimeOfDay("07:59"))
	assert.False(t, ok)
	cur, ok := ds.Current(MustTimeOfDay("08:00"))
	require.True(t, ok)
	assert.Equal(t, "a", cur.Text)
}

func TestLoadResolvesEntryShapes(t *testing.T) {
	b := loadTest(t, testSettings, testOdd, testEven)

	mon := b.Odd["monday"]
	require.Len(t, mon, 2)
	assert.Equal(t, Entry{Kind: BlockRef, Name: "pomodoro"}, mon[0].Entry)
	assert.Equal(t, Entry{Kind: TitledBlock, Name: "meeting", Title: "Standup"}, mon[1].Entry)

	common := b.Odd[CommonSection]
	require.Len(t, common, 3)
	assert.Equal(t, Entry{Kind: PointRef, Name: "drink_water"}, common[0].Entry)
	assert.Equal(t, Entry{Kind: DirectMessage, Text: "Lunch time"}, common[1].Entry)
	assert.Equal(t, Entry{Kind: DirectMessage, Text: "Go to bed"}, common[2].Entry)

	assert.Equal(t, 10*time.Second, b.Settings.AlarmInterval)
	assert.Equal(t, 300*time.Second, b.Settings.MaxAlarmDuration)
	assert.Equal(t, "/System/Library/Sounds/Ping.aiff", b.Settings.SoundFile)
	assert.True(t, b.Settings.Skips(time.Saturday))
	assert.Equal(t, "22:00", b.Tasks.DailySummary.String())
	assert.True(t, b.Tasks.HasHabitPrompt)
	assert.Equal(t, 8, b.Tasks.UrgentPriority)
	assert.Len(t, b.Tasks.DailyUrgent, 2)
	assert.Equal(t, "tasks/tasks.json", b.Paths.Tasks)
	assert.Equal(t, "reports", b.Reports.Dir)
}

func TestBundleDaySchedule(t *testing.T) {
	b := loadTest(t, testSettings, testOdd, testEven)

	// 2026-10-19 is a Monday in ISO week 43.
	mon := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	ds := b.DaySchedule(mon)
	assert.Equal(t, time.Monday, ds.Day)
	// pomodoro pair, standup pair, drink_water, lunch, bed
	assert.Len(t, ds.Events, 7)
	assert.Len(t, FindOverlaps(ds), 1)
	assert.Equal(t, "Standup", ds.EventsAt(MustTimeOfDay("09:15"))[0].Title)

	// The following Tuesday is in week 44.
	tue := time.Date(2026, 10, 27, 9, 0, 0, 0, time.UTC)
	ds = b.DaySchedule(tue)
	require.Len(t, ds.Events, 2)
	assert.Equal(t, "nap", ds.Events[0].Title)

	sat := time.Date(2026, 10, 24, 9, 0, 0, 0, time.UTC)
	ds = b.DaySchedule(sat)
	assert.True(t, ds.Skipped)
	assert.Empty(t, ds.Events)

	assert.Contains(t, b.Week(Even), "tuesday")
	assert.NotContains(t, b.Week(Odd), "tuesday")
	assert.Len(t, b.Week(Odd)[CommonSection], 3)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name     string
		settings string
		odd      string
		want     error
		section  string
		key      string
	}{
		{"bad key", testSettings, "[monday]\n\"9:00\" = \"pomodoro\"\n", ErrInvalidTimeFormat, "monday", "9:00"},
		{"unknown section", testSettings, "[someday]\n\"09:00\" = \"pomodoro\"\n", ErrUnknownSection, "someday", ""},
		{"unknown point", testSettings, "[monday]\n\"09:00\" = { point = \"coffee\" }\n", ErrUnknownReference, "monday", "09:00"},
		{"bad shape", testSettings, "[monday]\n\"09:00\" = { foo = \"bar\" }\n", ErrInvalidValue, "monday", "09:00"},
		{"number value", testSettings, "[monday]\n\"09:00\" = 5\n", ErrInvalidValue, "monday", "09:00"},
		{"crossing", testSettings, "[friday]\n\"23:40\" = \"nap\"\n", ErrMidnightCrossing, "friday", "23:40"},
		{"zero duration", "[time_blocks]\nbad = 0\n", "", ErrInvalidValue, "time_blocks", "bad"},
		{"bad skip day", "[settings]\nskip_days = [\"funday\"]\n", "", ErrInvalidValue, "settings", "skip_days"},
		{"bad summary", "[tasks]\ndaily_summary = \"22h\"\n", "", ErrInvalidTimeFormat, "tasks", "daily_summary"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := Load(Sources{Settings: c.settings, Odd: c.odd, Even: ""})
			require.Error(t, err)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, c.want)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, c.section, ce.Section)
			assert.Equal(t, c.key, ce.Key)
			assert.NotEmpty(t, ce.File)
		})
	}
}

func TestLoadReportsFirstBadEntryInOrder(t *testing.T) {
	// Two bad sections and two bad keys; the first in sorted order wins.
	odd := "[zzday]\n\"09:00\" = \"pomodoro\"\n[funday]\n\"09:00\" = \"pomodoro\"\n"
	keys := "[monday]\n\"9pm\" = \"pomodoro\"\n\"10am\" = \"pomodoro\"\n"
	for range 20 {
		_, err := Load(Sources{Settings: testSettings, Odd: odd})
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "funday", ce.Section)

		_, err = Load(Sources{Settings: testSettings, Odd: keys})
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "10am", ce.Key)
	}
}

func TestLoadUnknownBlockReference(t *testing.T) {
	odd := "[monday]\n\"09:00\" = { block = \"nonexistent\" }\n"
	b, err := Load(Sources{Settings: testSettings, Odd: odd, Even: testEven})
	require.Error(t, err)
	assert.Nil(t, b)
	require.ErrorIs(t, err, ErrUnknownReference)

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "nonexistent", ce.Ref)
	assert.Equal(t, BlockRef, ce.RefKind)
	assert.Equal(t, OddWeekFile, ce.File)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestLoadDirAndHolderReload(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(SettingsFile, testSettings)
	write(OddWeekFile, testOdd)
	write(EvenWeekFile, testEven)

	h, err := NewHolder(dir)
	require.NoError(t, err)
	first := h.Get()
	assert.Equal(t, dir, first.Dir)
	assert.Equal(t, filepath.Join(dir, "tasks/tasks.json"), first.Path(first.Paths.Tasks))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, home, first.Path("~"))
	assert.Equal(t, filepath.Join(home, "ddl.json"), first.Path("~/ddl.json"))
	assert.Equal(t, "/abs/ddl.json", first.Path("/abs/ddl.json"))

	write(EvenWeekFile, "[tuesday]\n\"14:00\" = { block = \"missing\" }\n")
	require.Error(t, h.Reload())
	assert.Same(t, first, h.Get())

	write(EvenWeekFile, "[tuesday]\n\"15:00\" = \"nap\"\n")
	require.NoError(t, h.Reload())
	assert.NotSame(t, first, h.Get())
}

func TestLoadDirMissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
