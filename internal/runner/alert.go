package runner

import (
	"fmt"
	"strings"
	"time"

	"reminder/internal/tasks"
)

type AlertKind string

const (
	AlertEvent   AlertKind = "event"
	AlertSummary AlertKind = "summary"
	AlertUrgent  AlertKind = "urgent"
	AlertHabit   AlertKind = "habit"
	AlertReport  AlertKind = "report"
)

// Alert is one unit of work for the dispatcher. Key identifies it within a
// day for deduplication.
type Alert struct {
	Key     string
	Kind    AlertKind
	At      time.Time
	Title   string
	Message string
}

func (a Alert) notifies() bool {
	return a.Kind == AlertEvent || a.Kind == AlertSummary || a.Kind == AlertUrgent
}

func summaryMessage(done []tasks.Task) string {
	if len(done) == 0 {
		return "Today's completed tasks\n\nNothing completed today. Keep going tomorrow!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Today's completed tasks\n\nYou completed %d task(s):\n\n", len(done))
	writeTaskLines(&b, done)
	return b.String()
}

func urgentMessage(urgent []tasks.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d urgent task(s) waiting:\n\n", len(urgent))
	writeTaskLines(&b, urgent)
	return b.String()
}

func writeTaskLines(b *strings.Builder, ts []tasks.Task) {
	for i, t := range ts {
		fmt.Fprintf(b, "%d. %s (priority %d)\n", i+1, t.Description, t.Priority)
	}
}
