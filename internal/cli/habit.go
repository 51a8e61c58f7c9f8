package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"reminder/internal/habit"
)

func newHabitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "habit",
		Short: "Record today's habits interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.settings()
			if err != nil {
				return err
			}
			now, err := a.localNow()
			if err != nil {
				return err
			}
			tr := habit.NewTracker(b.Path(b.Paths.Habits), b.Path(b.Paths.Records))
			saved, err := tr.Prompt(cmd.Context(), a.prompter, now)
			if err != nil {
				return err
			}
			if !saved {
				fmt.Fprintln(a.out, warningStyle.Render("Check-in cancelled; nothing recorded"))
				return nil
			}
			fmt.Fprintln(a.out, successStyle.Render("Habits recorded for "+now.Format("2006-01-02")))
			return nil
		},
	}
}
