package habit

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// HuhPrompter asks in the terminal with a huh multi-select.
type HuhPrompter struct{}

func (HuhPrompter) Choose(ctx context.Context, title, prompt string, options []string) ([]string, bool, error) {
	var sel []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Description(prompt).
				Options(huh.NewOptions(options...)...).
				Value(&sel),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if sel == nil {
		sel = []string{}
	}
	return sel, true, nil
}
