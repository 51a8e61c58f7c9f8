package notify

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

const stopButton = "Stop"

// MacOS uses afplay and AppleScript dialogs through osascript.
type MacOS struct {
	cmd commander
}

func (*MacOS) Name() string { return "macos" }

func (m *MacOS) PlaySound(_ context.Context, file string) error {
	return m.cmd.Start("afplay", file)
}

func (m *MacOS) ShowDialog(ctx context.Context, title, message string, timeout time.Duration) (bool, error) {
	secs := int(math.Ceil(timeout.Seconds()))
	if secs < 1 {
		secs = 1
	}
	script := fmt.Sprintf(`display dialog %s with title %s buttons {%s} default button %s giving up after %d`,
		appleQuote(message), appleQuote(title), appleQuote(stopButton), appleQuote(stopButton), secs)
	out, err := m.cmd.Output(ctx, "osascript", "-e", script)
	if err != nil {
		return false, err
	}
	res := string(out)
	return strings.Contains(res, "button returned:"+stopButton) && !strings.Contains(res, "gave up:true"), nil
}

func (m *MacOS) Choose(ctx context.Context, title, prompt string, options []string) ([]string, bool, error) {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = appleQuote(o)
	}
	script := fmt.Sprintf(`choose from list {%s} with title %s with prompt %s with multiple selections allowed and empty selection allowed`,
		strings.Join(quoted, ", "), appleQuote(title), appleQuote(prompt))
	out, err := m.cmd.Output(ctx, "osascript", "-e", script)
	if err != nil {
		return nil, false, err
	}
	res := strings.TrimSpace(string(out))
	if res == "false" {
		return nil, false, nil
	}
	return splitSelection(res, ", ", options), true, nil
}

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// splitSelection splits tool output on sep, keeping only known options so an
// option containing sep is still matched whole.
func splitSelection(out, sep string, options []string) []string {
	if out == "" {
		return []string{}
	}
	var sel []string
	rest := out
	for rest != "" {
		matched := false
		for _, o := range options {
			if rest == o || strings.HasPrefix(rest, o+sep) {
				sel = append(sel, o)
				rest = strings.TrimPrefix(strings.TrimPrefix(rest, o), sep)
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	if sel == nil {
		sel = []string{}
	}
	return sel
}
