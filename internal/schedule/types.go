package schedule

import (
	"fmt"
	"time"
)

// CommonSection is the section whose entries apply to every day.
const CommonSection = "common"

var dayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayName returns the lowercase English name used as a section key.
func DayName(d time.Weekday) string { return dayNames[d] }

// ParseDayName is the inverse of DayName.
func ParseDayName(s string) (time.Weekday, bool) {
	for i, n := range dayNames {
		if n == s {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func validSection(s string) bool {
	if s == CommonSection {
		return true
	}
	_, ok := ParseDayName(s)
	return ok
}

type Parity int

const (
	Odd Parity = iota
	Even
)

func (p Parity) String() string {
	if p == Even {
		return "even"
	}
	return "odd"
}

func ParseParity(s string) (Parity, error) {
	switch s {
	case "odd":
		return Odd, nil
	case "even":
		return Even, nil
	}
	return 0, fmt.Errorf("parity %q: want odd or even", s)
}

func (p Parity) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// EntryKind tags the four shapes a schedule value can take.
type EntryKind int

const (
	BlockRef EntryKind = iota + 1
	PointRef
	DirectMessage
	TitledBlock
)

func (k EntryKind) String() string {
	switch k {
	case BlockRef:
		return "BlockRef"
	case PointRef:
		return "PointRef"
	case DirectMessage:
		return "DirectMessage"
	case TitledBlock:
		return "TitledBlock"
	}
	return fmt.Sprintf("EntryKind(%d)", int(k))
}

// Entry is a schedule value after shape resolution. Name is the block or
// point name; Title is set for TitledBlock; Text for DirectMessage.
type Entry struct {
	Kind  EntryKind
	Name  string
	Title string
	Text  string
}

func (e Entry) isBlock() bool { return e.Kind == BlockRef || e.Kind == TitledBlock }

// SectionEntry is one "HH:MM" key of a day or common section.
type SectionEntry struct {
	At    TimeOfDay
	Key   string
	Entry Entry
}

// Section holds entries in declaration order by time.
type Section []SectionEntry

// Week is one parsed weekly file, keyed by section name.
type Week map[string]Section

type EventKind string

const (
	EventStart   EventKind = "start"
	EventEnd     EventKind = "end"
	EventPoint   EventKind = "point"
	EventMessage EventKind = "message"
)

// CompiledEvent is one trigger in a DaySchedule. BlockID links the start and
// end events of a single block instance and is empty otherwise.
type CompiledEvent struct {
	At       TimeOfDay `json:"at"`
	Kind     EventKind `json:"kind"`
	Text     string    `json:"text"`
	Title    string    `json:"title"`
	Source   string    `json:"source"`
	Ref      string    `json:"ref,omitempty"`
	BlockID  string    `json:"block_id,omitempty"`
	Duration int       `json:"duration,omitempty"`
}

// DialogTitle is the heading shown on the alert for this event.
func (e CompiledEvent) DialogTitle() string {
	switch e.Kind {
	case EventStart:
		return "Start"
	case EventEnd:
		return "End"
	default:
		return "Reminder"
	}
}

// DaySchedule is the ordered event table for one weekday.
type DaySchedule struct {
	Day     time.Weekday    `json:"-"`
	Skipped bool            `json:"skipped"`
	Events  []CompiledEvent `json:"events"`
}

// SkipPolicy decides what a skip day keeps.
type SkipPolicy int

const (
	// SkipAll drops every event on a skip day, common entries included.
	SkipAll SkipPolicy = iota
	// SkipDayOnly drops the weekday section but keeps common entries.
	SkipDayOnly
)

func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch s {
	case "", "all":
		return SkipAll, nil
	case "day_only":
		return SkipDayOnly, nil
	}
	return 0, fmt.Errorf("skip_mode %q: want all or day_only", s)
}

func (p SkipPolicy) String() string {
	if p == SkipDayOnly {
		return "day_only"
	}
	return "all"
}
