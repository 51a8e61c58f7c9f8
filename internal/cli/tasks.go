package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reminder/internal/tasks"
)

func (a *app) taskStore() (*tasks.Store, error) {
	b, err := a.settings()
	if err != nil {
		return nil, err
	}
	return tasks.NewStore(b.Path(b.Paths.Tasks), b.Path(b.Paths.Log)), nil
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <task> <priority>",
		Short:   "Add a task, or change the priority of an existing one",
		Example: `  reminder add "biology homework" 8`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			priority, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("priority %q: %w", args[1], tasks.ErrInvalidPriority)
			}
			store, err := a.taskStore()
			if err != nil {
				return err
			}
			res, err := store.Add(args[0], priority)
			if err != nil {
				return err
			}
			if res.Updated {
				fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Task %q updated! Priority changed from %d to %d", args[0], res.OldPriority, priority)))
			} else {
				fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Task %q added with priority %d", args[0], priority)))
			}
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|description>...",
		Short: "Delete tasks by id (from 'reminder ls') or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.taskStore()
			if err != nil {
				return err
			}
			res, err := store.Remove(args...)
			if err != nil {
				return err
			}
			for _, f := range res.Failures {
				fmt.Fprintln(a.out, errorStyle.Render(f.Error()))
			}
			for _, t := range res.Removed {
				fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Task %q deleted", t.Description)))
			}
			if len(res.Failures) > 0 {
				return fmt.Errorf("%d of %d tasks not deleted", len(res.Failures), len(args))
			}
			return nil
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Show tasks by priority, highest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := a.taskStore()
			if err != nil {
				return err
			}
			ts, err := store.List()
			if err != nil {
				return err
			}
			if len(ts) == 0 {
				fmt.Fprintln(a.out, warningStyle.Render("No tasks found"))
				return nil
			}

			t := newTable("ID", "Priority", "Description")
			for i, task := range ts {
				t.Row(strconv.Itoa(i+1), priorityBar(task.Priority), task.Description)
			}
			fmt.Fprintln(a.out, titleStyle.Render("Current Task List"))
			fmt.Fprintln(a.out, t.Render())
			fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("Total tasks: %d", len(ts))))
			return nil
		},
	}
}
