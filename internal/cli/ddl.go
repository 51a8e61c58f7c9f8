package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reminder/internal/deadline"
)

func (a *app) deadlineStore() (*deadline.Store, error) {
	b, err := a.settings()
	if err != nil {
		return nil, err
	}
	s := deadline.NewStore(b.Path(b.Paths.Deadlines))
	s.Now = a.now
	return s, nil
}

// rangeMessage is the user-facing wording for an out-of-range M.D date.
func rangeMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, deadline.ErrMonthRange):
		return "Month must be between 1 and 12", true
	case errors.Is(err, deadline.ErrDayRange):
		return "Day must be between 1 and 31", true
	}
	return "", false
}

func newDdlCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Manage deadlines",
	}

	add := &cobra.Command{
		Use:     "add <event> <M.D>",
		Short:   "Add a deadline; the date rolls over to next year once passed",
		Example: `  reminder ddl add "tax return" 4.15`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.deadlineStore()
			if err != nil {
				return err
			}
			dl, updated, err := store.Add(args[0], args[1])
			if err != nil {
				if msg, ok := rangeMessage(err); ok {
					fmt.Fprintln(a.out, errorStyle.Render(msg))
				}
				return err
			}
			verb := "added"
			if updated {
				verb = "updated"
			}
			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Deadline %q %s: %s", dl.Event, verb, dl.Deadline)))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <event>...",
		Short: "Delete deadlines by event name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.deadlineStore()
			if err != nil {
				return err
			}
			removed, failures, err := store.Remove(args...)
			if err != nil {
				return err
			}
			for _, f := range failures {
				fmt.Fprintln(a.out, errorStyle.Render(f.Error()))
			}
			for _, ev := range removed {
				fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Deadline %q deleted", ev)))
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d deadlines not deleted", len(failures), len(args))
			}
			return nil
		},
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "Show deadlines, soonest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := a.deadlineStore()
			if err != nil {
				return err
			}
			ds, err := store.List()
			if err != nil {
				return err
			}
			if len(ds) == 0 {
				fmt.Fprintln(a.out, warningStyle.Render("No deadlines found"))
				return nil
			}
			today, err := a.localNow()
			if err != nil {
				return err
			}

			t := newTable("Event", "Deadline", "Days left", "Status")
			for _, d := range ds {
				left := d.DaysLeft(today)
				u := deadline.UrgencyFor(left)
				st := lipgloss.NewStyle().Foreground(urgencyColor(u))
				t.Row(d.Event, d.Deadline.String(), strconv.Itoa(left), st.Render(string(u)))
			}
			fmt.Fprintln(a.out, titleStyle.Render("Deadlines"))
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}

	cmd.AddCommand(add, rm, ls)
	return cmd
}

func urgencyColor(u deadline.Urgency) lipgloss.Color {
	switch u {
	case deadline.Overdue, deadline.Today:
		return colorHigh
	case deadline.Urgent:
		return colorMedium
	case deadline.Soon:
		return colorMorning
	}
	return colorOK
}
