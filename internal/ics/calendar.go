// Package ics exports compiled schedules and deadlines as iCalendar files.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"reminder/internal/deadline"
	"reminder/internal/jsonfile"
	appLog "reminder/internal/log"
)

const productID = "-//reminder//schedule export//EN"

var uidNamespace = uuid.MustParse("0b6b1f0e-8f7c-4d55-b7a4-2c1e5a9d3f61")

// NewCalendar creates a PUBLISH calendar holding occurrences.
func NewCalendar(occs []Occurrence, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Reminder schedule")

	for _, o := range occs {
		ev := cal.AddEvent(uid(o.InstanceKey))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(o.Start)
		ev.SetEndAt(o.End)
		ev.SetSummary(o.Summary)
		if o.Description != "" {
			ev.SetDescription(o.Description)
		}
		ev.AddCategory(string(o.Kind))
		ev.AddCategory(o.Parity.String() + " week")
	}
	return cal
}

// AddDeadlines appends one all-day event per deadline.
func AddDeadlines(cal *ical.Calendar, ds []deadline.Deadline, stamp time.Time) {
	for _, d := range ds {
		ev := cal.AddEvent(uid("deadline-" + d.Event))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(d.Deadline.Time)
		ev.SetAllDayEndAt(d.Deadline.AddDate(0, 0, 1))
		ev.SetSummary("DDL: " + d.Event)
		ev.AddCategory("deadline")
	}
}

// Write serializes cal to path atomically.
func Write(cal *ical.Calendar, path string) error {
	if err := jsonfile.WriteAtomic(path, []byte(cal.Serialize()), 0o644); err != nil {
		return err
	}
	appLog.Info("ics written", "path", path, "events", len(cal.Events()))
	return nil
}

func uid(key string) string {
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@reminder"
}
