package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reminder/internal/deadline"
	"reminder/internal/habit"
	"reminder/internal/ics"
	"reminder/internal/report"
	"reminder/internal/tasks"
)

const dateLayout = "2006-01-02"

// parseDate reads YYYY-MM-DD in loc; empty means now.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		days      int
		from      string
		out       string
		deadlines bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the upcoming schedule and deadlines as an iCalendar file",
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
			start, err := parseDate(from, now)
			if err != nil {
				return err
			}

			res, err := ics.ExpandSchedule(b, ics.ExpandConfig{Location: now.Location(), From: start, Days: days})
			if err != nil {
				return err
			}
			cal := ics.NewCalendar(res.Occurrences, now)

			nd := 0
			if deadlines {
				ds, err := deadline.NewStore(b.Path(b.Paths.Deadlines)).List()
				if err != nil {
					return err
				}
				ics.AddDeadlines(cal, ds, now)
				nd = len(ds)
			}
			if err := ics.Write(cal, out); err != nil {
				return err
			}

			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Wrote %d events and %d deadlines to %s", len(res.Occurrences), nd, out)))
			if len(res.SkippedDays) > 0 {
				fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("%d skipped day(s) left empty", len(res.SkippedDays))))
			}
			if res.Truncated {
				fmt.Fprintln(a.out, warningStyle.Render("Day range was capped"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 14, "Number of days to export")
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&out, "out", "o", "schedule.ics", "Output path")
	cmd.Flags().BoolVar(&deadlines, "deadlines", true, "Include deadlines as all-day events")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:       "report weekly|monthly",
		Short:     "Write a weekly or monthly review workbook",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(report.Weekly), string(report.Monthly)},
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.settings()
			if err != nil {
				return err
			}
			now, err := a.localNow()
			if err != nil {
				return err
			}
			target, err := parseDate(date, now)
			if err != nil {
				return err
			}

			g := &report.Generator{
				Dir:    b.Path(b.Reports.Dir),
				Tasks:  tasks.NewStore(b.Path(b.Paths.Tasks), b.Path(b.Paths.Log)),
				Habits: habit.NewTracker(b.Path(b.Paths.Habits), b.Path(b.Paths.Records)),
			}
			path, err := g.Generate(report.Kind(args[0]), target)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Report written to "+path))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any day inside the period, YYYY-MM-DD (default: today)")
	return cmd
}
