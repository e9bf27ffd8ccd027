package prompt

import (
	"context"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// StaticPrompter answers from fixed values. It serves unattended runs and
// --yes.
type StaticPrompter struct {
	identity  ports.Identity
	assumeYes bool
}

// NewStaticPrompter creates a StaticPrompter. identity fills fields the
// caller's defaults leave empty; assumeYes answers every confirmation.
func NewStaticPrompter(identity ports.Identity, assumeYes bool) *StaticPrompter {
	return &StaticPrompter{identity: identity, assumeYes: assumeYes}
}

// Identity completes defaults from the static identity. It returns
// ErrNoAnswer when the result is still incomplete.
func (p *StaticPrompter) Identity(_ context.Context, defaults ports.Identity) (ports.Identity, error) {
	id := defaults
	if id.Name == "" {
		id.Name = p.identity.Name
	}
	if id.Email == "" {
		id.Email = p.identity.Email
	}
	if !id.Complete() {
		return ports.Identity{}, ports.ErrNoAnswer
	}
	return id, nil
}

// Confirm returns true with assumeYes, otherwise the question's default.
func (p *StaticPrompter) Confirm(_ context.Context, _ string, defaultYes bool) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	return defaultYes, nil
}

var _ ports.Prompter = (*StaticPrompter)(nil)
