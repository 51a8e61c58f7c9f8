// Package notify shows desktop alerts: a sound plus a dismissible dialog,
// repeated until the user reacts or the alarm times out.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	appLog "reminder/internal/log"
)

// Backend is one desktop notification mechanism.
type Backend interface {
	Name() string
	PlaySound(ctx context.Context, file string) error
	// ShowDialog blocks until the dialog is dismissed (true) or timeout
	// elapses (false).
	ShowDialog(ctx context.Context, title, message string, timeout time.Duration) (bool, error)
	// Choose asks the user to tick any of options. ok is false when the
	// prompt was cancelled.
	Choose(ctx context.Context, title, prompt string, options []string) (selected []string, ok bool, err error)
}

// NewBackend returns the backend called name. "auto" picks by GOOS.
func NewBackend(name string) (Backend, error) {
	if name == "" || name == "auto" {
		switch runtime.GOOS {
		case "darwin":
			name = "macos"
		case "linux":
			name = "linux"
		default:
			name = "log"
		}
	}
	switch name {
	case "macos":
		return &MacOS{cmd: execCommander{}}, nil
	case "linux":
		return &Linux{cmd: execCommander{}}, nil
	case "log":
		return Log{}, nil
	}
	return nil, fmt.Errorf("unknown notifier %q", name)
}

// Alert is one message to put in front of the user.
type Alert struct {
	Title   string
	Message string
}

type Options struct {
	SoundFile   string
	Interval    time.Duration
	MaxDuration time.Duration
}

// Alarm plays the sound and shows the dialog, repeating every Interval until
// the dialog is dismissed, MaxDuration has passed, or ctx is done. Each
// dialog gives up after one Interval so the sound repeats while it is open.
func Alarm(ctx context.Context, b Backend, a Alert, opt Options) error {
	start := time.Now()
	for round := 1; ; round++ {
		roundStart := time.Now()
		if opt.SoundFile != "" {
			if err := b.PlaySound(ctx, opt.SoundFile); err != nil {
				appLog.Warn("play sound failed", "err", err, "file", opt.SoundFile)
			}
		}

		remaining := opt.MaxDuration - time.Since(start)
		if remaining <= 0 {
			return nil
		}
		timeout := remaining
		if opt.Interval > 0 && opt.Interval < timeout {
			timeout = opt.Interval
		}
		dismissed, err := b.ShowDialog(ctx, a.Title, a.Message, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("show dialog: %w", err)
		}
		if dismissed {
			appLog.Debug("alarm dismissed", "title", a.Title, "round", round)
			return nil
		}
		if time.Since(start) >= opt.MaxDuration {
			appLog.Info("alarm timed out", "title", a.Title, "rounds", round)
			return nil
		}

		// A dialog that gave up early still leaves a full Interval between sounds.
		wait := opt.Interval - time.Since(roundStart)
		if wait <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// commander runs external programs. Tests substitute a recorder.
type commander interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Start(name string, args ...string) error
}

type execCommander struct{}

func (execCommander) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Start launches the program without waiting; the process is reaped in the
// background.
func (execCommander) Start(name string, args ...string) error {
	c := exec.Command(name, args...)
	if err := c.Start(); err != nil {
		return err
	}
	go func() { _ = c.Wait() }()
	return nil
}
