package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"reminder/internal/schedule"
)

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Validate the schedule files and report overlapping blocks",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			b, err := a.validate()
			if err != nil {
				return err
			}
			if n := printOverlaps(a.out, b); n == 0 {
				fmt.Fprintln(a.out, successStyle.Render("No overlapping blocks"))
			} else {
				fmt.Fprintln(a.out, warningStyle.Render(fmt.Sprintf("%d overlapping block pair(s)", n)))
			}
			return nil
		},
	}
}

// validate loads the schedule and reports the outcome.
func (a *app) validate() (*schedule.Bundle, error) {
	dir, err := a.scheduleDir()
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, "Validating "+dir)
	b, err := schedule.LoadDir(dir)
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("Invalid configuration"))
		return nil, err
	}
	fmt.Fprintln(a.out, successStyle.Render("Configuration files are valid"))
	return b, nil
}

// printOverlaps lists overlaps of both weeks, Monday first, and returns how
// many it found.
func printOverlaps(w io.Writer, b *schedule.Bundle) int {
	n := 0
	for _, p := range []schedule.Parity{schedule.Odd, schedule.Even} {
		week := b.WeekSchedule(p)
		for i := range 7 {
			ds := week[(i+1)%7]
			for _, ow := range schedule.FindOverlaps(ds) {
				fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("[%s week] %s", p, ow)))
				n++
			}
		}
	}
	return n
}
