// Package prompt implements ports.Prompter: interactive forms on a terminal
// and static answers for unattended runs.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/validation"
)

// FormPrompter asks questions with huh forms. Without a terminal on both
// stdin and stdout it answers ErrNoAnswer.
type FormPrompter struct {
	interactive func() bool
	run         func(ctx context.Context, form *huh.Form) error
}

// NewFormPrompter creates a FormPrompter bound to the process terminal.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{
		interactive: IsTerminal,
		run: func(ctx context.Context, form *huh.Form) error {
			return form.RunWithContext(ctx)
		},
	}
}

// IsTerminal reports whether stdin and stdout are both terminals.
func IsTerminal() bool {
	return isTTY(os.Stdin.Fd()) && isTTY(os.Stdout.Fd())
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Identity asks for the git name and email, pre-filled from defaults.
func (p *FormPrompter) Identity(ctx context.Context, defaults ports.Identity) (ports.Identity, error) {
	if !p.interactive() {
		return ports.Identity{}, ports.ErrNoAnswer
	}

	id := defaults
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Recorded as git user.name").
				Placeholder("Jane Doe").
				Value(&id.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Email").
				Description("Recorded as git user.email").
				Placeholder("jane@example.com").
				Value(&id.Email).
				Validate(validateEmail),
		).Title("Git identity"),
	)
	if err := p.runForm(ctx, form); err != nil {
		return ports.Identity{}, err
	}

	id.Name = strings.TrimSpace(id.Name)
	id.Email = strings.TrimSpace(id.Email)
	return id, nil
}

// Confirm asks a yes/no question.
func (p *FormPrompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	if !p.interactive() {
		return false, ports.ErrNoAnswer
	}

	answer := defaultYes
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&answer),
		),
	)
	if err := p.runForm(ctx, form); err != nil {
		return false, err
	}
	return answer, nil
}

func (p *FormPrompter) runForm(ctx context.Context, form *huh.Form) error {
	err := p.run(ctx, form)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted):
		return ports.ErrAborted
	default:
		return fmt.Errorf("prompt: %w", err)
	}
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return validation.ValidateGitConfigValue(s)
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(s, " \t") {
		return errors.New("enter an address such as jane@example.com")
	}
	return validation.ValidateGitConfigValue(s)
}

var _ ports.Prompter = (*FormPrompter)(nil)
