package ports

import (
	"context"
	"errors"
)

// ErrNoAnswer is returned by a Prompter that cannot obtain a value,
// e.g. when running non-interactively without a configured default.
var ErrNoAnswer = errors.New("no answer available")

// ErrAborted is returned when the user dismisses a question without
// answering it.
var ErrAborted = errors.New("prompt aborted by user")

// Identity is the user identity recorded in the git configuration.
type Identity struct {
	Name  string
	Email string
}

// Complete returns true if both name and email are set.
func (i Identity) Complete() bool {
	return i.Name != "" && i.Email != ""
}

// Prompter collects values from the user.
type Prompter interface {
	// Identity asks for the user's name and email. Fields already set in
	// defaults are offered as pre-filled answers.
	Identity(ctx context.Context, defaults Identity) (Identity, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)
}
