package brew

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Provider contributes brew:install and one step per Homebrew-only formula.
type Provider struct {
	cfg       *config.Config
	runners   commandutil.Runners
	boot      *Bootstrapper
	installer *Installer
}

// NewProvider creates a Homebrew Provider.
func NewProvider(cfg *config.Config, fs ports.FileSystem, runners commandutil.Runners) *Provider {
	boot := NewBootstrapper(fs, runners)
	return &Provider{
		cfg:       cfg,
		runners:   runners,
		boot:      boot,
		installer: NewInstaller(boot, runners),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "brew"
}

// Installer returns the Homebrew installer other providers fall back to.
func (p *Provider) Installer() *Installer {
	return p.installer
}

// Steps returns the Homebrew steps. Homebrew itself is optional: it only
// serves as a fallback unless formulae are configured.
func (p *Provider) Steps() ([]provision.Step, error) {
	install, err := provision.Build(NewInstallStep(p.boot, p.runners),
		provision.WithOptional(len(p.cfg.Packages.Brew) == 0))
	if err != nil {
		return nil, err
	}

	defs := make([]provision.Definition, 0, len(p.cfg.Packages.Brew))
	for _, formula := range p.cfg.Packages.Brew {
		defs = append(defs, NewFormulaStep(formula, p.installer))
	}
	formulae, err := provision.BuildAll(defs)
	if err != nil {
		return nil, err
	}
	return append([]provision.Step{install}, formulae...), nil
}

var _ provision.Provider = (*Provider)(nil)
