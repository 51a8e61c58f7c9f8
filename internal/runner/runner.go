// Package runner drives the schedule: a cron tick computes due alerts and a
// single dispatcher goroutine shows them one at a time.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"reminder/internal/habit"
	appLog "reminder/internal/log"
	"reminder/internal/notify"
	"reminder/internal/report"
	"reminder/internal/schedule"
	"reminder/internal/tasks"
)

const queueSize = 64

type Options struct {
	// Location evaluates wall-clock times. Nil means time.Local.
	Location *time.Location
	// TickSpec is a standard 5-field cron spec; empty means every minute.
	TickSpec string
}

// deps are the stores derived from one bundle's [paths] and [reports].
type deps struct {
	bundle  *schedule.Bundle
	tasks   *tasks.Store
	tracker *habit.Tracker
	reports *report.Generator
}

type Runner struct {
	holder  *schedule.Holder
	backend notify.Backend
	loc     *time.Location
	spec    string

	mu        sync.Mutex
	fired     map[string]bool
	firedDate string
	cur       *deps

	queue chan Alert
	cron  *cron.Cron
	wg    sync.WaitGroup
}

func New(h *schedule.Holder, backend notify.Backend, opts Options) *Runner {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TickSpec == "" {
		opts.TickSpec = "* * * * *"
	}
	return &Runner{
		holder:  h,
		backend: backend,
		loc:     opts.Location,
		spec:    opts.TickSpec,
		fired:   map[string]bool{},
		queue:   make(chan Alert, queueSize),
	}
}

// Holder exposes the active schedule to the HTTP layer.
func (r *Runner) Holder() *schedule.Holder { return r.holder }

func (r *Runner) Location() *time.Location { return r.loc }

// Reload re-reads the schedule. On failure the previous schedule keeps
// running.
func (r *Runner) Reload() error {
	if err := r.holder.Reload(); err != nil {
		appLog.Error("schedule reload failed; keeping previous schedule", err, "dir", r.holder.Dir())
		return err
	}
	appLog.Info("schedule reloaded", "dir", r.holder.Dir())
	return nil
}

func (r *Runner) current() *deps {
	b := r.holder.Get()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil && r.cur.bundle == b {
		return r.cur
	}

	d := &deps{
		bundle:  b,
		tasks:   tasks.NewStore(b.Path(b.Paths.Tasks), b.Path(b.Paths.Log)),
		tracker: habit.NewTracker(b.Path(b.Paths.Habits), b.Path(b.Paths.Records)),
	}
	gen := &report.Generator{Dir: b.Path(b.Reports.Dir), Tasks: d.tasks, Habits: d.tracker}
	if v := b.Reports.WeeklyReview; v != "" {
		if s, err := report.ParseWeekly(v); err != nil {
			appLog.Warn("weekly review disabled", "err", err)
		} else {
			gen.Weekly = &s
		}
	}
	if v := b.Reports.MonthlyReview; v != "" {
		if s, err := report.ParseMonthly(v); err != nil {
			appLog.Warn("monthly review disabled", "err", err)
		} else {
			gen.Monthly = &s
		}
	}
	if gen.Weekly != nil || gen.Monthly != nil {
		d.reports = gen
	}
	r.cur = d
	return d
}

// Tick returns the alerts due at now's minute that have not fired yet
// today, and marks them fired.
func (r *Runner) Tick(now time.Time) []Alert {
	now = now.In(r.loc)
	d := r.current()
	b := d.bundle
	at := schedule.TimeOfDayOf(now)
	skipped := b.Settings.Skips(now.Weekday())

	var due []Alert
	for _, e := range b.DaySchedule(now).EventsAt(at) {
		id := e.BlockID
		if id == "" {
			id = e.Source + "|" + e.Text
		}
		due = append(due, Alert{
			Key:     fmt.Sprintf("event|%s|%s|%s", at, e.Kind, id),
			Kind:    AlertEvent,
			At:      now,
			Title:   e.DialogTitle(),
			Message: e.Text,
		})
	}

	if !skipped && at == b.Tasks.DailySummary {
		done, err := d.tasks.CompletedOn(now)
		if err != nil {
			appLog.Error("daily summary: read task log", err)
		} else {
			due = append(due, Alert{Key: "summary|" + at.String(), Kind: AlertSummary, At: now,
				Title: "Daily summary", Message: summaryMessage(done)})
		}
	}

	if !skipped {
		for _, u := range b.Tasks.DailyUrgent {
			if u != at {
				continue
			}
			urgent, err := d.tasks.Urgent(b.Tasks.UrgentPriority)
			if err != nil {
				appLog.Error("urgent reminder: read tasks", err)
				break
			}
			if len(urgent) > 0 {
				due = append(due, Alert{Key: "urgent|" + at.String(), Kind: AlertUrgent, At: now,
					Title: "Urgent tasks", Message: urgentMessage(urgent)})
			}
		}
	}

	if b.Tasks.HasHabitPrompt && at == b.Tasks.HabitPrompt {
		due = append(due, Alert{Key: "habit|" + at.String(), Kind: AlertHabit, At: now, Title: "Habit check-in"})
	}

	if g := d.reports; g != nil {
		if (g.Weekly != nil && g.Weekly.Due(now)) || (g.Monthly != nil && g.Monthly.Due(now)) {
			due = append(due, Alert{Key: "report|" + at.String(), Kind: AlertReport, At: now, Title: "Review report"})
		}
	}

	return r.markFired(now, due)
}

func (r *Runner) markFired(now time.Time, due []Alert) []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	date := now.Format("2006-01-02")
	if date != r.firedDate {
		r.fired = map[string]bool{}
		r.firedDate = date
	}
	out := due[:0]
	for _, a := range due {
		if r.fired[a.Key] {
			continue
		}
		r.fired[a.Key] = true
		out = append(out, a)
	}
	return out
}

func (r *Runner) enqueue(alerts []Alert) {
	for _, a := range alerts {
		select {
		case r.queue <- a:
			appLog.Debug("alert queued", "kind", string(a.Kind), "key", a.Key)
		default:
			appLog.Warn("alert queue full; dropping", "key", a.Key)
		}
	}
}

// Start launches the dispatcher and the cron tick. Both stop when ctx is
// done; Wait blocks until they have.
func (r *Runner) Start(ctx context.Context) error {
	l := appLog.CronLogger()
	r.cron = cron.New(
		cron.WithLocation(r.loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if _, err := r.cron.AddFunc(r.spec, func() { r.enqueue(r.Tick(time.Now())) }); err != nil {
		return fmt.Errorf("tick spec %q: %w", r.spec, err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.dispatchLoop(ctx)
	}()

	// Catch up on reviews missed while the daemon was down.
	if d := r.current(); d.reports != nil {
		r.enqueue([]Alert{{Key: "report|startup", Kind: AlertReport, At: time.Now().In(r.loc), Title: "Review report"}})
	}

	r.cron.Start()
	appLog.Info("runner started", "tick", r.spec, "location", r.loc.String(), "notifier", r.backend.Name())

	go func() {
		<-ctx.Done()
		stopped := r.cron.Stop()
		<-stopped.Done()
	}()
	return nil
}

// Wait blocks until the dispatcher has exited.
func (r *Runner) Wait() { r.wg.Wait() }

// RunOnce ticks at now and handles every due alert before returning.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) []Alert {
	alerts := r.Tick(now)
	for _, a := range alerts {
		r.dispatch(ctx, a)
	}
	return alerts
}

func (r *Runner) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-r.queue:
			r.dispatch(ctx, a)
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, a Alert) {
	d := r.current()
	switch {
	case a.notifies():
		s := d.bundle.Settings
		opts := notify.Options{SoundFile: s.SoundFile, Interval: s.AlarmInterval, MaxDuration: s.MaxAlarmDuration}
		if err := notify.Alarm(ctx, r.backend, notify.Alert{Title: a.Title, Message: a.Message}, opts); err != nil && ctx.Err() == nil {
			appLog.Error("alarm failed", err, "key", a.Key)
		}
	case a.Kind == AlertHabit:
		saved, err := d.tracker.Prompt(ctx, r.backend, a.At)
		if err != nil {
			appLog.Error("habit prompt failed", err)
			return
		}
		appLog.Info("habit prompt finished", "saved", saved)
	case a.Kind == AlertReport:
		if d.reports == nil {
			return
		}
		if _, err := d.reports.GenerateDue(a.At); err != nil {
			appLog.Error("report generation failed", err)
		}
	}
}
