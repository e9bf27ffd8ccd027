package apt

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Provider contributes apt:update followed by one step per configured package.
type Provider struct {
	cfg      *config.Config
	runners  commandutil.Runners
	fallback ports.Installer
}

// NewProvider creates an apt Provider. fallback is the installer tried for
// packages apt cannot install; it may be nil.
func NewProvider(cfg *config.Config, runners commandutil.Runners, fallback ports.Installer) *Provider {
	return &Provider{cfg: cfg, runners: runners, fallback: fallback}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "apt"
}

// Steps returns the apt steps in execution order.
func (p *Provider) Steps() ([]provision.Step, error) {
	if len(p.cfg.Packages.Apt) == 0 {
		return nil, nil
	}

	installer := NewInstaller(p.runners)
	defs := make([]provision.Definition, 0, len(p.cfg.Packages.Apt)+1)
	defs = append(defs, NewUpdateStep(p.runners))
	for _, pkg := range p.cfg.Packages.Apt {
		defs = append(defs, NewPackageStep(pkg, installer, p.fallback, p.cfg.BrewName(pkg)))
	}
	return provision.BuildAll(defs)
}

var _ provision.Provider = (*Provider)(nil)
