package windows

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/platform"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Provider contributes the Windows host steps. It contributes nothing on a
// plain Linux host.
type Provider struct {
	cfg      *config.Config
	platform *platform.Platform
	runners  commandutil.Runners
	fs       ports.FileSystem
}

// NewProvider creates a windows Provider.
func NewProvider(cfg *config.Config, p *platform.Platform, runners commandutil.Runners, fs ports.FileSystem) *Provider {
	return &Provider{cfg: cfg, platform: p, runners: runners, fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "windows"
}

// Steps returns the feature, default version and distribution steps, then
// wsl:systemd when running inside WSL. Inside WSL the host steps are
// optional: the distribution already runs.
func (p *Provider) Steps() ([]provision.Step, error) {
	if !p.platform.TargetsWindows() {
		return nil, nil
	}

	hostDefs := []provision.Definition{
		NewFeatureStep(FeatureWSL, p.platform, p.runners.Local),
		NewFeatureStep(FeatureVMP, p.platform, p.runners.Local),
		NewDefaultVersionStep(p.platform, p.runners.Local),
		NewDistroStep(p.cfg.Distro.Name, p.cfg.Distro.WingetID, p.platform, p.runners),
	}
	steps, err := provision.BuildAll(hostDefs, provision.WithOptional(p.platform.IsWSL()))
	if err != nil {
		return nil, err
	}

	if p.platform.IsWSL() {
		systemd, err := provision.Build(NewSystemdStep(p.fs, p.runners.Local), provision.Optional())
		if err != nil {
			return nil, err
		}
		steps = append(steps, systemd)
	}
	return steps, nil
}

var _ provision.Provider = (*Provider)(nil)
