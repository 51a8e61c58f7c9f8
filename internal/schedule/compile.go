package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// blockNamespace scopes the UUIDv5 block instance ids.
var blockNamespace = uuid.MustParse("7f1d3c52-5b7e-4c1e-9a51-3f0d2a6b9e10")

// CompileDay expands the weekday section and the common section into one
// DaySchedule. Day entries come before common entries at the same minute.
// Every entry is resolved even on skip days so a bad entry is never hidden.
func CompileDay(day time.Weekday, daySection, common Section, blocks map[string]int, points map[string]string, s Settings) (DaySchedule, error) {
	ds := DaySchedule{Day: day, Skipped: s.Skips(day)}

	dayEvents, err := compileSection(DayName(day), daySection, blocks, points)
	if err != nil {
		return DaySchedule{}, err
	}
	commonEvents, err := compileSection(CommonSection, common, blocks, points)
	if err != nil {
		return DaySchedule{}, err
	}

	if ds.Skipped {
		if s.SkipMode == SkipAll {
			return ds, nil
		}
		dayEvents = nil
	}

	events := make([]CompiledEvent, 0, len(dayEvents)+len(commonEvents))
	events = append(events, dayEvents...)
	events = append(events, commonEvents...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })
	ds.Events = events
	return ds, nil
}

func compileSection(source string, sec Section, blocks map[string]int, points map[string]string) ([]CompiledEvent, error) {
	var out []CompiledEvent
	for _, se := range sec {
		evs, err := compileEntry(source, se, blocks, points)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

func compileEntry(source string, se SectionEntry, blocks map[string]int, points map[string]string) ([]CompiledEvent, error) {
	e := se.Entry
	switch e.Kind {
	case BlockRef, TitledBlock:
		dur, ok := blocks[e.Name]
		if !ok {
			return nil, &ConfigError{Section: source, Key: se.At.String(), Err: ErrInternal,
				Detail: fmt.Sprintf("block %q escaped validation", e.Name)}
		}
		end, ok := se.At.Add(dur)
		if !ok {
			return nil, &ConfigError{Section: source, Key: se.At.String(), Err: ErrMidnightCrossing,
				Detail: fmt.Sprintf("%s + %dmin", se.At, dur)}
		}
		title := e.Name
		if e.Kind == TitledBlock && e.Title != "" {
			title = e.Title
		}
		id := uuid.NewSHA1(blockNamespace, []byte(source+"|"+se.At.String()+"|"+e.Name)).String()
		return []CompiledEvent{
			{At: se.At, Kind: EventStart, Text: fmt.Sprintf("%s (%dmin)", title, dur), Title: title,
				Source: source, Ref: e.Name, BlockID: id, Duration: dur},
			{At: end, Kind: EventEnd, Text: title + " finished, take a break", Title: title,
				Source: source, Ref: e.Name, BlockID: id, Duration: dur},
		}, nil

	case PointRef:
		msg, ok := points[e.Name]
		if !ok {
			return nil, &ConfigError{Section: source, Key: se.At.String(), Err: ErrInternal,
				Detail: fmt.Sprintf("point %q escaped validation", e.Name)}
		}
		return []CompiledEvent{{At: se.At, Kind: EventPoint, Text: msg, Title: e.Name, Source: source, Ref: e.Name}}, nil

	case DirectMessage:
		return []CompiledEvent{{At: se.At, Kind: EventMessage, Text: e.Text, Title: e.Text, Source: source}}, nil
	}
	return nil, &ConfigError{Section: source, Key: se.At.String(), Err: ErrInternal, Detail: fmt.Sprintf("entry kind %v", e.Kind)}
}
