package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reminder/internal/schedule"
)

func newStatusCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current and next events of today",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			b, err := a.bundle()
			if err != nil {
				return err
			}
			now, err := a.localNow()
			if err != nil {
				return err
			}
			printStatus(a.out, b, now, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show today's full schedule")
	return cmd
}

// eventLabel names an event the way the schedule files do.
func eventLabel(e schedule.CompiledEvent) string {
	if e.Kind == schedule.EventEnd {
		return e.Text
	}
	return e.Title
}

// humanizeMinutes renders 65 as "1h 5m" and 5 as "5m".
func humanizeMinutes(m int) string {
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}

var (
	oddStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorOdd)
	evenStyle = lipgloss.NewStyle().Bold(true).Foreground(colorEven)
	nowStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorOK)
	nextStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLow)
)

type period struct {
	name  string
	color lipgloss.Color
	rows  [][]string
}

func printStatus(w io.Writer, b *schedule.Bundle, now time.Time, verbose bool) {
	parity := schedule.SelectWeek(now)
	header := oddStyle
	if parity == schedule.Even {
		header = evenStyle
	}
	name := parity.String()
	fmt.Fprintln(w, header.Render(strings.ToUpper(name[:1])+name[1:]+" Week")+mutedStyle.Render("  "+now.Format("Monday, Jan 2 15:04")))

	ds := b.DaySchedule(now)
	if ds.Skipped && len(ds.Events) == 0 {
		fmt.Fprintln(w, panelStyle.BorderForeground(colorMedium).Render("Today is a skipped day - enjoy your time off!"))
		return
	}

	at := schedule.TimeOfDayOf(now)
	var lines []string
	cur, ok := ds.Current(at)
	if ok {
		lines = append(lines, nowStyle.Render("NOW:")+"  "+eventLabel(cur)+" at "+cur.At.String())
	} else {
		lines = append(lines, mutedStyle.Render("No active event"))
	}
	lines = append(lines, "")
	if next := ds.Next(at, 1); len(next) > 0 {
		in := humanizeMinutes(int(next[0].At - at))
		lines = append(lines, nextStyle.Render("NEXT:")+" "+eventLabel(next[0])+" at "+next[0].At.String()+warningStyle.Render(" (in "+in+")"))
	} else {
		lines = append(lines, mutedStyle.Render("No upcoming events"))
	}
	border := colorMuted
	if ok {
		border = colorOK
	}
	fmt.Fprintln(w, panelStyle.BorderForeground(border).Render(strings.Join(lines, "\n")))

	if !verbose {
		return
	}

	periods := []*period{
		{name: "Morning", color: colorMorning},
		{name: "Afternoon", color: colorMedium},
		{name: "Evening", color: colorEvening},
	}
	total := 0
	for _, e := range ds.Events {
		if e.Kind == schedule.EventEnd {
			continue
		}
		p := periods[2]
		switch h := e.At.Hour(); {
		case h >= 5 && h < 12:
			p = periods[0]
		case h >= 12 && h < 18:
			p = periods[1]
		}
		p.rows = append(p.rows, []string{e.At.String(), eventLabel(e)})
		total++
	}

	t := newTable("Time", "Activity")
	for _, p := range periods {
		if len(p.rows) == 0 {
			continue
		}
		t.Row("", lipgloss.NewStyle().Bold(true).Foreground(p.color).Render(p.name))
		t.Rows(p.rows...)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Total events: %d", total)))

	for _, ow := range schedule.FindOverlaps(ds) {
		fmt.Fprintln(w, warningStyle.Render("overlap: "+ow.String()))
	}
}
