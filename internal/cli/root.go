// Package cli implements the reminder command line tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reminder/internal/config"
	"reminder/internal/habit"
	"reminder/internal/schedule"
)

// app carries what every subcommand needs. Config and schedule are loaded
// lazily so commands like ls work without a valid schedule.
type app struct {
	configPath string
	dir        string
	out        io.Writer
	now        func() time.Time
	prompter   habit.Prompter

	cfg *config.Config
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", a.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", a.configPath, err)
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) scheduleDir() (string, error) {
	if a.dir != "" {
		return config.ExpandPath(a.dir), nil
	}
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	return cfg.ScheduleDir(), nil
}

func (a *app) bundle() (*schedule.Bundle, error) {
	dir, err := a.scheduleDir()
	if err != nil {
		return nil, err
	}
	return schedule.LoadDir(dir)
}

// settings loads only settings.toml, enough for the task, deadline and
// habit stores.
func (a *app) settings() (*schedule.Bundle, error) {
	dir, err := a.scheduleDir()
	if err != nil {
		return nil, err
	}
	return schedule.LoadSettingsDir(dir)
}

// localNow is now in the configured timezone.
func (a *app) localNow() (time.Time, error) {
	cfg, err := a.config()
	if err != nil {
		return time.Time{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	return a.now().In(loc), nil
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{now: time.Now, prompter: habit.HuhPrompter{}}, version)
}

func newRootCmd(a *app, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reminder",
		Short: "Reminder - manage your schedule, tasks, deadlines and habits",
		Long: `Reminder manages a two-week rotating schedule kept in TOML files
(settings.toml, odd_weeks.toml, even_weeks.toml) together with a task list,
deadlines and habit check-ins. The reminderd daemon raises the alerts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.out = cmd.OutOrStdout()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Path to reminderd.yaml")
	rootCmd.PersistentFlags().StringVar(&a.dir, "dir", "", "Schedule directory (overrides config_dir and "+config.EnvConfigDir+")")

	rootCmd.AddCommand(
		newAddCmd(a),
		newRmCmd(a),
		newLsCmd(a),
		newDdlCmd(a),
		newHabitCmd(a),
		newStatusCmd(a),
		newLintCmd(a),
		newUpdateCmd(a),
		newStopCmd(a),
		newViewCmd(a),
		newExportCmd(a),
		newReportCmd(a),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
