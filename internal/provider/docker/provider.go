package docker

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Provider contributes docker:engine and, when configured, docker:group.
type Provider struct {
	cfg     *config.Config
	runners commandutil.Runners
	fs      ports.FileSystem
	apt     ports.Installer
	user    string
}

// NewProvider creates a docker Provider for the given login user.
func NewProvider(cfg *config.Config, runners commandutil.Runners, fs ports.FileSystem, apt ports.Installer, user string) *Provider {
	return &Provider{cfg: cfg, runners: runners, fs: fs, apt: apt, user: user}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "docker"
}

// Steps returns the docker steps, or none when docker is disabled.
func (p *Provider) Steps() ([]provision.Step, error) {
	if !p.cfg.Docker.Enabled {
		return nil, nil
	}

	engine, err := provision.Build(NewEngineStep(p.runners, p.fs, p.apt))
	if err != nil {
		return nil, err
	}
	steps := []provision.Step{engine}

	if p.cfg.Docker.AddUserToGroup {
		grp, err := provision.Build(NewGroupStep(p.user, p.runners.Local), provision.Optional())
		if err != nil {
			return nil, err
		}
		steps = append(steps, grp)
	}
	return steps, nil
}

var _ provision.Provider = (*Provider)(nil)
