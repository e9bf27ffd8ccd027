package git

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Provider contributes the git:identity step.
type Provider struct {
	cfg      *config.Config
	runner   ports.CommandRunner
	fs       ports.FileSystem
	prompter ports.Prompter
}

// NewProvider creates a git Provider.
func NewProvider(cfg *config.Config, runner ports.CommandRunner, fs ports.FileSystem, prompter ports.Prompter) *Provider {
	return &Provider{cfg: cfg, runner: runner, fs: fs, prompter: prompter}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "git"
}

// Steps returns the git steps.
func (p *Provider) Steps() ([]provision.Step, error) {
	defaults := ports.Identity{Name: p.cfg.Identity.Name, Email: p.cfg.Identity.Email}
	step, err := provision.Build(NewIdentityStep(DefaultConfigPath, defaults, p.prompter, p.runner, p.fs))
	if err != nil {
		return nil, err
	}
	return []provision.Step{step}, nil
}

var _ provision.Provider = (*Provider)(nil)
