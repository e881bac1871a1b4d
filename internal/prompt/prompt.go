// Package prompt wraps the interactive confirmation shown before cigen
// overwrites a file that differs from the rendered output.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt: aborted")

// ConfirmConfig configures a yes/no style prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// PromptDriver abstracts the terminal so callers can be tested without one.
type PromptDriver interface {
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
}

// New returns the survey-backed driver.
func New() PromptDriver {
	return &surveyDriver{}
}

type surveyDriver struct{}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, normalizeError(err)
	}
	return out, nil
}

func normalizeError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return fmt.Errorf("prompt: %w", err)
}

// ConfirmOverwrite asks whether path should be replaced. The diff is shown
// as the prompt help text.
func ConfirmOverwrite(ctx context.Context, driver PromptDriver, path, diff string) (bool, error) {
	if driver == nil {
		return false, errors.New("prompt: driver is nil")
	}
	return driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Overwrite %s?", path),
		Default: false,
		Help:    diff,
	})
}
