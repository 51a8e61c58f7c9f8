package web

import (
	"net/http"
	"time"

	appLog "reminder/internal/log"
	"reminder/internal/schedule"
)

const (
	defaultNextCount = 3
	maxNextCount     = 50
	// lookahead bounds /api/next to one week of schedules.
	lookahead = 7
)

type eventDTO struct {
	At      time.Time          `json:"at"`
	Time    schedule.TimeOfDay `json:"time"`
	Kind    schedule.EventKind `json:"kind"`
	Title   string             `json:"title"`
	Text    string             `json:"text"`
	Source  string             `json:"source"`
	BlockID string             `json:"block_id,omitempty"`
}

func toDTO(e schedule.CompiledEvent, day time.Time) eventDTO {
	return eventDTO{
		At:      e.At.On(day),
		Time:    e.At,
		Kind:    e.Kind,
		Title:   e.Title,
		Text:    e.Text,
		Source:  e.Source,
		BlockID: e.BlockID,
	}
}

type todayResponse struct {
	Date     string          `json:"date"`
	Weekday  string          `json:"weekday"`
	Parity   schedule.Parity `json:"parity"`
	Skipped  bool            `json:"skipped"`
	Timezone string          `json:"timezone"`
	Events   []eventDTO      `json:"events"`
	Current  *eventDTO       `json:"current,omitempty"`
}

type nextResponse struct {
	Now    time.Time  `json:"now"`
	Events []nextItem `json:"events"`
}

type nextItem struct {
	eventDTO
	InMinutes int `json:"in_minutes"`
}

type weekDay struct {
	Day     string       `json:"day"`
	Skipped bool         `json:"skipped"`
	Events  []eventDTO   `json:"events"`
	Overlap []overlapDTO `json:"overlaps,omitempty"`
}

type weekResponse struct {
	Parity schedule.Parity `json:"parity"`
	Days   []weekDay       `json:"days"`
}

type overlapDTO struct {
	Day     string `json:"day"`
	First   string `json:"first"`
	Second  string `json:"second"`
	Message string `json:"message"`
}

type overlapsResponse struct {
	Parity   schedule.Parity `json:"parity"`
	Overlaps []overlapDTO    `json:"overlaps"`
}

func (s *Server) localNow() time.Time {
	return s.now().In(s.ctrl.Location())
}

// GET /api/today
func (s *Server) handleToday(w http.ResponseWriter, _ *http.Request) {
	now := s.localNow()
	ds := s.ctrl.Holder().Get().DaySchedule(now)

	resp := todayResponse{
		Date:     now.Format("2006-01-02"),
		Weekday:  schedule.DayName(now.Weekday()),
		Parity:   schedule.SelectWeek(now),
		Skipped:  ds.Skipped,
		Timezone: now.Location().String(),
		Events:   make([]eventDTO, 0, len(ds.Events)),
	}
	for _, e := range ds.Events {
		resp.Events = append(resp.Events, toDTO(e, now))
	}
	if cur, ok := ds.Current(schedule.TimeOfDayOf(now)); ok {
		d := toDTO(cur, now)
		resp.Current = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/next?count=N
//
// Events strictly after now, continuing into the following days.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	count := parseIntDefault(r.URL.Query().Get("count"), defaultNextCount)
	if count <= 0 {
		writeError(w, http.StatusBadRequest, "count must be positive")
		return
	}
	if count > maxNextCount {
		count = maxNextCount
	}

	now := s.localNow()
	b := s.ctrl.Holder().Get()
	resp := nextResponse{Now: now, Events: []nextItem{}}

	after := schedule.TimeOfDayOf(now)
	for i := 0; i <= lookahead && len(resp.Events) < count; i++ {
		day := now.AddDate(0, 0, i)
		for _, e := range b.DaySchedule(day).Next(after, count-len(resp.Events)) {
			d := toDTO(e, day)
			resp.Events = append(resp.Events, nextItem{eventDTO: d, InMinutes: int(d.At.Sub(now.Truncate(time.Minute)) / time.Minute)})
		}
		// From tomorrow on, every event of the day counts.
		after = -1
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parityParam(r *http.Request) (schedule.Parity, error) {
	v := r.URL.Query().Get("parity")
	if v == "" {
		return schedule.SelectWeek(s.localNow()), nil
	}
	return schedule.ParseParity(v)
}

// mondayFirst orders weekdays as the schedule files are usually written.
var mondayFirst = [...]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func (s *Server) buildWeek(p schedule.Parity) weekResponse {
	week := s.ctrl.Holder().Get().WeekSchedule(p)
	// Dates only anchor wall-clock times for the JSON view; use the
	// current week's dates.
	now := s.localNow()
	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))

	resp := weekResponse{Parity: p}
	for i, wd := range mondayFirst {
		ds := week[wd]
		day := monday.AddDate(0, 0, i)
		wdDay := weekDay{Day: schedule.DayName(wd), Skipped: ds.Skipped, Events: make([]eventDTO, 0, len(ds.Events))}
		for _, e := range ds.Events {
			wdDay.Events = append(wdDay.Events, toDTO(e, day))
		}
		for _, ow := range schedule.FindOverlaps(ds) {
			wdDay.Overlap = append(wdDay.Overlap, overlapToDTO(ow))
		}
		resp.Days = append(resp.Days, wdDay)
	}
	return resp
}

func overlapToDTO(ow schedule.OverlapWarning) overlapDTO {
	return overlapDTO{
		Day:     ow.Day,
		First:   ow.A.Title + " " + ow.A.At.String() + "-" + ow.AEnd.String(),
		Second:  ow.B.Title + " " + ow.B.At.String() + "-" + ow.BEnd.String(),
		Message: ow.String(),
	}
}

// GET /api/week?parity=odd|even
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	p, err := s.parityParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.buildWeek(p))
}

// GET /api/overlaps?parity=odd|even
func (s *Server) handleOverlaps(w http.ResponseWriter, r *http.Request) {
	p, err := s.parityParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := overlapsResponse{Parity: p, Overlaps: []overlapDTO{}}
	for _, d := range s.buildWeek(p).Days {
		resp.Overlaps = append(resp.Overlaps, d.Overlap...)
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/reload
func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.Reload(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// POST /api/stop
func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if s.stop == nil {
		writeError(w, http.StatusNotImplemented, "stop not supported")
		return
	}
	appLog.Info("stop requested over HTTP")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
	s.stop()
}
