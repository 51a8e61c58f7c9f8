package schedule

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"reminder/internal/config"
)

const (
	SettingsFile = "settings.toml"
	OddWeekFile  = "odd_weeks.toml"
	EvenWeekFile = "even_weeks.toml"
)

// Sources are the raw texts of the three schedule files. The *Name fields
// only label errors.
type Sources struct {
	Settings     string
	Odd          string
	Even         string
	SettingsName string
	OddName      string
	EvenName     string
}

type Settings struct {
	SoundFile        string
	AlarmInterval    time.Duration
	MaxAlarmDuration time.Duration
	SkipDays         map[time.Weekday]bool
	SkipMode         SkipPolicy
}

func (s Settings) Skips(d time.Weekday) bool { return s.SkipDays[d] }

// TaskSettings drives the task-related alerts of the polling driver.
type TaskSettings struct {
	DailySummary   TimeOfDay
	DailyUrgent    []TimeOfDay
	HabitPrompt    TimeOfDay
	HasHabitPrompt bool
	UrgentPriority int
}

// Paths are file locations from [paths]; relative entries resolve against
// the config directory.
type Paths struct {
	Tasks     string
	Log       string
	Deadlines string
	Habits    string
	Records   string
}

// ReportSettings holds the raw review schedules; the report package parses
// them.
type ReportSettings struct {
	WeeklyReview  string
	MonthlyReview string
	Dir           string
}

// Bundle is an immutable, fully validated schedule configuration.
type Bundle struct {
	Dir      string
	Settings Settings
	Blocks   map[string]int
	Points   map[string]string
	Tasks    TaskSettings
	Paths    Paths
	Reports  ReportSettings
	Odd      Week
	Even     Week

	compiled [2][7]DaySchedule
}

type rawSettings struct {
	Settings struct {
		SoundFile        string   `toml:"sound_file"`
		AlarmInterval    *int     `toml:"alarm_interval"`
		MaxAlarmDuration *int     `toml:"max_alarm_duration"`
		SkipDays         []string `toml:"skip_days"`
		SkipMode         string   `toml:"skip_mode"`
	} `toml:"settings"`
	TimeBlocks map[string]int    `toml:"time_blocks"`
	TimePoints map[string]string `toml:"time_points"`
	Tasks      struct {
		DailySummary   string   `toml:"daily_summary"`
		DailyUrgent    []string `toml:"daily_urgent"`
		HabitPrompt    string   `toml:"habit_prompt"`
		UrgentPriority *int     `toml:"urgent_priority"`
	} `toml:"tasks"`
	Paths struct {
		TasksPath   string `toml:"tasks_path"`
		LogPath     string `toml:"log_path"`
		DdlPath     string `toml:"ddl_path"`
		HabitsPath  string `toml:"habits_path"`
		RecordPath  string `toml:"record_path"`
		ReportsPath string `toml:"reports_path"`
	} `toml:"paths"`
	Reports struct {
		WeeklyReview  string `toml:"weekly_review"`
		MonthlyReview string `toml:"monthly_review"`
		ReportsPath   string `toml:"reports_path"`
	} `toml:"reports"`
}

// LoadDir reads settings.toml, odd_weeks.toml and even_weeks.toml from dir.
func LoadDir(dir string) (*Bundle, error) {
	read := func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		return string(b), nil
	}
	var src Sources
	var err error
	if src.Settings, err = read(SettingsFile); err != nil {
		return nil, err
	}
	if src.Odd, err = read(OddWeekFile); err != nil {
		return nil, err
	}
	if src.Even, err = read(EvenWeekFile); err != nil {
		return nil, err
	}
	src.SettingsName, src.OddName, src.EvenName = SettingsFile, OddWeekFile, EvenWeekFile

	b, err := Load(src)
	if err != nil {
		return nil, err
	}
	b.Dir = dir
	return b, nil
}

// LoadSettingsDir reads only settings.toml from dir. The returned bundle has
// no weeks; use it for [paths], [tasks] and [reports].
func LoadSettingsDir(dir string) (*Bundle, error) {
	data, err := os.ReadFile(filepath.Join(dir, SettingsFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SettingsFile, err)
	}
	b, err := parseSettings(SettingsFile, string(data))
	if err != nil {
		return nil, err
	}
	b.Dir = dir
	return b, nil
}

// Load parses and validates all three sources and compiles every weekday of
// both weeks. Any failure aborts the whole load.
func Load(src Sources) (*Bundle, error) {
	name := func(n, def string) string {
		if n == "" {
			return def
		}
		return n
	}
	settingsName := name(src.SettingsName, SettingsFile)

	b, err := parseSettings(settingsName, src.Settings)
	if err != nil {
		return nil, err
	}
	if b.Odd, err = parseWeek(name(src.OddName, OddWeekFile), src.Odd, b.Blocks, b.Points); err != nil {
		return nil, err
	}
	if b.Even, err = parseWeek(name(src.EvenName, EvenWeekFile), src.Even, b.Blocks, b.Points); err != nil {
		return nil, err
	}

	for _, p := range []Parity{Odd, Even} {
		wk := b.Week(p)
		file := name(src.OddName, OddWeekFile)
		if p == Even {
			file = name(src.EvenName, EvenWeekFile)
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			ds, err := CompileDay(d, wk[DayName(d)], wk[CommonSection], b.Blocks, b.Points, b.Settings)
			if err != nil {
				var ce *ConfigError
				if errors.As(err, &ce) && ce.File == "" {
					ce.File = file
				}
				return nil, err
			}
			b.compiled[p][d] = ds
		}
	}
	return b, nil
}

func parseSettings(file, text string) (*Bundle, error) {
	var raw rawSettings
	if _, err := toml.Decode(text, &raw); err != nil {
		return nil, &ConfigError{File: file, Err: ErrInvalidValue, Detail: err.Error()}
	}

	b := &Bundle{
		Blocks: map[string]int{},
		Points: map[string]string{},
	}

	s := &b.Settings
	s.SoundFile = raw.Settings.SoundFile
	if s.SoundFile == "" {
		s.SoundFile = "/System/Library/Sounds/Ping.aiff"
	}
	s.AlarmInterval = 5 * time.Second
	if v := raw.Settings.AlarmInterval; v != nil {
		if *v <= 0 {
			return nil, &ConfigError{File: file, Section: "settings", Key: "alarm_interval", Err: ErrInvalidValue, Detail: "must be positive"}
		}
		s.AlarmInterval = time.Duration(*v) * time.Second
	}
	s.MaxAlarmDuration = 300 * time.Second
	if v := raw.Settings.MaxAlarmDuration; v != nil {
		if *v <= 0 {
			return nil, &ConfigError{File: file, Section: "settings", Key: "max_alarm_duration", Err: ErrInvalidValue, Detail: "must be positive"}
		}
		s.MaxAlarmDuration = time.Duration(*v) * time.Second
	}
	s.SkipDays = map[time.Weekday]bool{}
	for _, d := range raw.Settings.SkipDays {
		wd, ok := ParseDayName(d)
		if !ok {
			return nil, &ConfigError{File: file, Section: "settings", Key: "skip_days", Err: ErrInvalidValue, Detail: fmt.Sprintf("unknown day %q", d)}
		}
		s.SkipDays[wd] = true
	}
	mode, err := ParseSkipPolicy(raw.Settings.SkipMode)
	if err != nil {
		return nil, &ConfigError{File: file, Section: "settings", Key: "skip_mode", Err: ErrInvalidValue, Detail: err.Error()}
	}
	s.SkipMode = mode

	for k, v := range raw.TimeBlocks {
		if v <= 0 {
			return nil, &ConfigError{File: file, Section: "time_blocks", Key: k, Err: ErrInvalidValue, Detail: "duration must be a positive number of minutes"}
		}
		b.Blocks[k] = v
	}
	for k, v := range raw.TimePoints {
		b.Points[k] = v
	}

	t := &b.Tasks
	summary := raw.Tasks.DailySummary
	if summary == "" {
		summary = "22:00"
	}
	if t.DailySummary, err = ParseTimeOfDay(summary); err != nil {
		return nil, &ConfigError{File: file, Section: "tasks", Key: "daily_summary", Err: ErrInvalidTimeFormat, Detail: err.Error()}
	}
	for _, u := range raw.Tasks.DailyUrgent {
		at, err := ParseTimeOfDay(u)
		if err != nil {
			return nil, &ConfigError{File: file, Section: "tasks", Key: "daily_urgent", Err: ErrInvalidTimeFormat, Detail: err.Error()}
		}
		t.DailyUrgent = append(t.DailyUrgent, at)
	}
	if raw.Tasks.HabitPrompt != "" {
		if t.HabitPrompt, err = ParseTimeOfDay(raw.Tasks.HabitPrompt); err != nil {
			return nil, &ConfigError{File: file, Section: "tasks", Key: "habit_prompt", Err: ErrInvalidTimeFormat, Detail: err.Error()}
		}
		t.HasHabitPrompt = true
	}
	t.UrgentPriority = 8
	if raw.Tasks.UrgentPriority != nil {
		t.UrgentPriority = *raw.Tasks.UrgentPriority
	}

	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	b.Paths = Paths{
		Tasks:     def(raw.Paths.TasksPath, "tasks/tasks.json"),
		Log:       def(raw.Paths.LogPath, "tasks/tasks.log"),
		Deadlines: def(raw.Paths.DdlPath, "ddl.json"),
		Habits:    def(raw.Paths.HabitsPath, "habits.toml"),
		Records:   def(raw.Paths.RecordPath, "tasks/record.json"),
	}
	b.Reports = ReportSettings{
		WeeklyReview:  raw.Reports.WeeklyReview,
		MonthlyReview: raw.Reports.MonthlyReview,
		Dir:           def(raw.Reports.ReportsPath, def(raw.Paths.ReportsPath, "reports")),
	}
	return b, nil
}

func parseWeek(file, text string, blocks map[string]int, points map[string]string) (Week, error) {
	var raw map[string]any
	if _, err := toml.Decode(text, &raw); err != nil {
		return nil, &ConfigError{File: file, Err: ErrInvalidValue, Detail: err.Error()}
	}

	wk := Week{}
	for _, section := range slices.Sorted(maps.Keys(raw)) {
		v := raw[section]
		if !validSection(section) {
			return nil, &ConfigError{File: file, Section: section, Err: ErrUnknownSection}
		}
		table, ok := v.(map[string]any)
		if !ok {
			return nil, &ConfigError{File: file, Section: section, Err: ErrInvalidValue, Detail: "section must be a table"}
		}
		sec := make(Section, 0, len(table))
		for _, key := range slices.Sorted(maps.Keys(table)) {
			val := table[key]
			at, err := ParseTimeOfDay(key)
			if err != nil {
				return nil, &ConfigError{File: file, Section: section, Key: key, Err: ErrInvalidTimeFormat, Detail: err.Error()}
			}
			e, err := resolveEntry(val, blocks, points)
			if err != nil {
				var ce *ConfigError
				if errors.As(err, &ce) {
					ce.File, ce.Section, ce.Key = file, section, key
				}
				return nil, err
			}
			sec = append(sec, SectionEntry{At: at, Key: key, Entry: e})
		}
		sort.Slice(sec, func(i, j int) bool { return sec[i].At < sec[j].At })
		wk[section] = sec
	}
	return wk, nil
}

// resolveEntry maps one raw TOML value onto the Entry union. Block names win
// over point names when a bare string matches both tables.
func resolveEntry(v any, blocks map[string]int, points map[string]string) (Entry, error) {
	switch val := v.(type) {
	case string:
		if _, ok := blocks[val]; ok {
			return Entry{Kind: BlockRef, Name: val}, nil
		}
		if _, ok := points[val]; ok {
			return Entry{Kind: PointRef, Name: val}, nil
		}
		return Entry{Kind: DirectMessage, Text: val}, nil

	case map[string]any:
		str := func(k string) (string, bool, error) {
			x, ok := val[k]
			if !ok {
				return "", false, nil
			}
			s, ok := x.(string)
			if !ok {
				return "", true, &ConfigError{Err: ErrInvalidValue, Detail: fmt.Sprintf("%s must be a string", k)}
			}
			return s, true, nil
		}
		block, hasBlock, err := str("block")
		if err != nil {
			return Entry{}, err
		}
		title, hasTitle, err := str("title")
		if err != nil {
			return Entry{}, err
		}
		point, hasPoint, err := str("point")
		if err != nil {
			return Entry{}, err
		}
		msg, hasMsg, err := str("message")
		if err != nil {
			return Entry{}, err
		}

		switch {
		case hasBlock && len(val) == 1, hasBlock && hasTitle && len(val) == 2:
			if _, ok := blocks[block]; !ok {
				kind := BlockRef
				if hasTitle {
					kind = TitledBlock
				}
				return Entry{}, &ConfigError{Err: ErrUnknownReference, Ref: block, RefKind: kind}
			}
			if hasTitle {
				return Entry{Kind: TitledBlock, Name: block, Title: title}, nil
			}
			return Entry{Kind: BlockRef, Name: block}, nil
		case hasPoint && len(val) == 1:
			if _, ok := points[point]; !ok {
				return Entry{}, &ConfigError{Err: ErrUnknownReference, Ref: point, RefKind: PointRef}
			}
			return Entry{Kind: PointRef, Name: point}, nil
		case hasMsg && len(val) == 1:
			return Entry{Kind: DirectMessage, Text: msg}, nil
		}
		return Entry{}, &ConfigError{Err: ErrInvalidValue, Detail: "want block, block+title, point or message"}
	}
	return Entry{}, &ConfigError{Err: ErrInvalidValue, Detail: fmt.Sprintf("unsupported value type %T", v)}
}

// Path resolves a configured path against the config directory.
func (b *Bundle) Path(p string) string {
	p = config.ExpandPath(p)
	if filepath.IsAbs(p) || b.Dir == "" {
		return p
	}
	return filepath.Join(b.Dir, p)
}
