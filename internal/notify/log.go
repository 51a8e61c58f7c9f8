package notify

import (
	"context"
	"time"

	appLog "reminder/internal/log"
)

// Log only writes alerts to the application log. Dialogs count as dismissed
// and choices as cancelled.
type Log struct{}

func (Log) Name() string { return "log" }

func (Log) PlaySound(context.Context, string) error { return nil }

func (Log) ShowDialog(_ context.Context, title, message string, _ time.Duration) (bool, error) {
	appLog.Info("alert", "title", title, "message", message)
	return true, nil
}

func (Log) Choose(_ context.Context, title, _ string, options []string) ([]string, bool, error) {
	appLog.Info("choice skipped", "title", title, "options", len(options))
	return nil, false, nil
}
