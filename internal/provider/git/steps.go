// Package git records the user's git identity in ~/.gitconfig.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// DefaultConfigPath is the global git configuration file.
const DefaultConfigPath = "~/.gitconfig"

var loadOptions = ini.LoadOptions{
	AllowBooleanKeys:    true,
	IgnoreInlineComment: true,
}

// IdentityStep makes sure user.name and user.email are set globally.
type IdentityStep struct {
	path     string
	defaults ports.Identity
	prompter ports.Prompter
	runner   ports.CommandRunner
	fs       ports.FileSystem

	// resolved holds the answer between Apply and Fallback of one
	// execution. Check clears it, so every run asks afresh.
	resolved ports.Identity
}

// NewIdentityStep creates the git:identity step. defaults pre-answer the
// prompt; path is the gitconfig file, usually DefaultConfigPath.
func NewIdentityStep(path string, defaults ports.Identity, prompter ports.Prompter, runner ports.CommandRunner, fs ports.FileSystem) *IdentityStep {
	return &IdentityStep{
		path:     ports.ExpandPath(path),
		defaults: defaults,
		prompter: prompter,
		runner:   runner,
		fs:       fs,
	}
}

// Name returns "git:identity".
func (s *IdentityStep) Name() string {
	return "git:identity"
}

// Description returns a human-readable description.
func (s *IdentityStep) Description() string {
	return "Configure git user.name and user.email"
}

// Check reports Present when the gitconfig already holds a complete identity.
func (s *IdentityStep) Check(_ provision.RunContext) (provision.Presence, error) {
	s.resolved = ports.Identity{}

	current, err := s.current()
	if err != nil {
		return provision.Absent, err
	}
	if current.Complete() {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply writes the identity with git config --global.
func (s *IdentityStep) Apply(ctx provision.RunContext) error {
	id, err := s.identity(ctx.Context())
	if err != nil {
		return err
	}
	if err := ports.Exec(ctx.Context(), s.runner, "git", "config", "--global", "user.name", id.Name); err != nil {
		return err
	}
	return ports.Exec(ctx.Context(), s.runner, "git", "config", "--global", "user.email", id.Email)
}

// Fallback edits the gitconfig file directly, keeping its other sections.
func (s *IdentityStep) Fallback(ctx provision.RunContext) error {
	id, err := s.identity(ctx.Context())
	if err != nil {
		return err
	}

	file, err := s.load()
	if err != nil {
		return err
	}
	user := file.Section("user")
	user.Key("name").SetValue(id.Name)
	user.Key("email").SetValue(id.Email)

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("render gitconfig: %w", err)
	}
	return s.fs.WriteFile(s.path, buf.Bytes(), 0o644)
}

// Verify parses the gitconfig and checks the identity it holds.
func (s *IdentityStep) Verify(_ provision.RunContext) error {
	current, err := s.current()
	if err != nil {
		return err
	}
	if !current.Complete() {
		return fmt.Errorf("%s has no complete [user] identity", s.path)
	}
	if !strings.Contains(current.Email, "@") {
		return fmt.Errorf("user.email %q is not an email address", current.Email)
	}
	return nil
}

// identity resolves the identity to write once per execution: configured values,
// then values already in the gitconfig, then the prompter for the rest.
func (s *IdentityStep) identity(ctx context.Context) (ports.Identity, error) {
	if s.resolved.Complete() {
		return s.resolved, nil
	}

	id := s.defaults
	if current, err := s.current(); err == nil {
		if id.Name == "" {
			id.Name = current.Name
		}
		if id.Email == "" {
			id.Email = current.Email
		}
	}

	if !id.Complete() {
		answered, err := s.prompter.Identity(ctx, id)
		if errors.Is(err, ports.ErrNoAnswer) {
			return ports.Identity{}, provision.Skip("no git identity configured and no terminal to ask")
		}
		if err != nil {
			return ports.Identity{}, fmt.Errorf("ask for git identity: %w", err)
		}
		id = answered
	}
	if !id.Complete() {
		return ports.Identity{}, errors.New("git identity needs both a name and an email")
	}

	s.resolved = id
	return id, nil
}

func (s *IdentityStep) current() (ports.Identity, error) {
	file, err := s.load()
	if err != nil {
		return ports.Identity{}, err
	}
	user := file.Section("user")
	return ports.Identity{
		Name:  strings.TrimSpace(user.Key("name").String()),
		Email: strings.TrimSpace(user.Key("email").String()),
	}, nil
}

// load parses the gitconfig. A missing file is an empty configuration.
func (s *IdentityStep) load() (*ini.File, error) {
	if !s.fs.Exists(s.path) {
		return ini.Empty(loadOptions), nil
	}
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return file, nil
}
