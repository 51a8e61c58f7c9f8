package notify

import (
	"context"
	"errors"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// zenity exit codes
const (
	zenityCancel  = 1
	zenityTimeout = 5
)

// Linux uses paplay and zenity.
type Linux struct {
	cmd commander
}

func (*Linux) Name() string { return "linux" }

func (l *Linux) PlaySound(_ context.Context, file string) error {
	return l.cmd.Start("paplay", file)
}

func (l *Linux) ShowDialog(ctx context.Context, title, message string, timeout time.Duration) (bool, error) {
	secs := int(math.Ceil(timeout.Seconds()))
	if secs < 1 {
		secs = 1
	}
	_, err := l.cmd.Output(ctx, "zenity", "--info",
		"--title", title, "--text", message,
		"--ok-label", stopButton, "--timeout", strconv.Itoa(secs))
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case zenityTimeout:
			return false, nil
		case zenityCancel:
			// window closed
			return true, nil
		}
	}
	return false, err
}

func (l *Linux) Choose(ctx context.Context, title, prompt string, options []string) ([]string, bool, error) {
	args := []string{"--list", "--checklist",
		"--title", title, "--text", prompt,
		"--column", "Done", "--column", "Item",
		"--separator", "\n"}
	for _, o := range options {
		args = append(args, "FALSE", o)
	}
	out, err := l.cmd.Output(ctx, "zenity", args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == zenityCancel {
			return nil, false, nil
		}
		return nil, false, err
	}
	sel := []string{}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			sel = append(sel, line)
		}
	}
	return sel, true, nil
}
