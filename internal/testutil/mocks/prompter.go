package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Prompter is a scripted ports.Prompter.
type Prompter struct {
	mu       sync.Mutex
	identity ports.Identity
	err      error
	confirm  bool
	asked    []ports.Identity
}

// NewPrompter creates a Prompter that answers with identity.
func NewPrompter(identity ports.Identity) *Prompter {
	return &Prompter{identity: identity, confirm: true}
}

// SetError makes every question fail with err.
func (m *Prompter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetConfirm sets the answer to Confirm.
func (m *Prompter) SetConfirm(answer bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirm = answer
}

// Identity records the defaults it was offered and fills in missing fields.
func (m *Prompter) Identity(_ context.Context, defaults ports.Identity) (ports.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = append(m.asked, defaults)
	if m.err != nil {
		return ports.Identity{}, m.err
	}
	answer := defaults
	if answer.Name == "" {
		answer.Name = m.identity.Name
	}
	if answer.Email == "" {
		answer.Email = m.identity.Email
	}
	return answer, nil
}

// Confirm returns the configured answer.
func (m *Prompter) Confirm(_ context.Context, _ string, _ bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.confirm, nil
}

// Asked returns the defaults passed to each Identity call.
func (m *Prompter) Asked() []ports.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Identity(nil), m.asked...)
}

var _ ports.Prompter = (*Prompter)(nil)
