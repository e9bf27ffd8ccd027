package ssh

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Provider contributes the optional ssh:key step.
type Provider struct {
	cfg    *config.Config
	fs     ports.FileSystem
	runner ports.CommandRunner
}

// NewProvider creates an ssh Provider.
func NewProvider(cfg *config.Config, fs ports.FileSystem, runner ports.CommandRunner) *Provider {
	return &Provider{cfg: cfg, fs: fs, runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "ssh"
}

// Steps returns ssh:key, or nothing when key generation is disabled. The
// comment defaults to the configured git email.
func (p *Provider) Steps() ([]provision.Step, error) {
	if !p.cfg.SSH.Enabled {
		return nil, nil
	}
	comment := p.cfg.SSH.Comment
	if comment == "" {
		comment = p.cfg.Identity.Email
	}
	step, err := provision.Build(NewKeyStep(p.cfg.SSH.Path, comment, p.fs, p.runner), provision.Optional())
	if err != nil {
		return nil, err
	}
	return []provision.Step{step}, nil
}

var _ provision.Provider = (*Provider)(nil)
