package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	appLog "reminder/internal/log"
	"reminder/internal/schedule"
)

//go:embed templates/schedule.html
var templateFS embed.FS

var scheduleTmpl = template.Must(template.ParseFS(templateFS, "templates/schedule.html"))

type pageEvent struct {
	Time  string
	Kind  schedule.EventKind
	Label string
}

type pageDay struct {
	Day     string
	Today   bool
	Skipped bool
	Events  []pageEvent
	Overlap []overlapDTO
}

type pageData struct {
	Title string
	Days  []pageDay
}

// GET /schedule?parity=odd|even
//
// The week grid rendered for screenshots. The root element carries
// data-ready="true" once the markup is complete.
func (s *Server) handleSchedulePage(w http.ResponseWriter, r *http.Request) {
	p, err := s.parityParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := s.localNow()
	showToday := schedule.SelectWeek(now) == p
	today := schedule.DayName(now.Weekday())

	data := pageData{Title: "Schedule, " + p.String() + " week"}
	for _, d := range s.buildWeek(p).Days {
		pd := pageDay{Day: d.Day, Today: showToday && d.Day == today, Skipped: d.Skipped, Overlap: d.Overlap}
		for _, e := range d.Events {
			pd.Events = append(pd.Events, pageEvent{Time: e.Time.String(), Kind: e.Kind, Label: e.Text})
		}
		data.Days = append(data.Days, pd)
	}

	var buf bytes.Buffer
	if err := scheduleTmpl.Execute(&buf, data); err != nil {
		appLog.Error("render schedule page", err)
		http.Error(w, "failed to render schedule", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
