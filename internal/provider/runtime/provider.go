package runtime

import (
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Provider contributes one step per enabled runtime.
type Provider struct {
	cfg      *config.Config
	runners  commandutil.Runners
	fs       ports.FileSystem
	apt      ports.Installer
	fallback ports.Installer
	arch     string
}

// NewProvider creates a runtime Provider. apt installs the Python packages,
// fallback (Homebrew) is tried when a primary install fails and arch selects
// the Go download.
func NewProvider(cfg *config.Config, runners commandutil.Runners, fs ports.FileSystem, apt, fallback ports.Installer, arch string) *Provider {
	return &Provider{cfg: cfg, runners: runners, fs: fs, apt: apt, fallback: fallback, arch: arch}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "runtime"
}

// Steps returns node, python, go and rust in that order, skipping disabled ones.
func (p *Provider) Steps() ([]provision.Step, error) {
	inst := &installers{runners: p.runners, apt: p.apt, fs: p.fs, arch: p.arch}
	rt := p.cfg.Runtimes

	candidates := []struct {
		cfg config.RuntimeConfig
		def *Step
	}{
		{rt.Node, p.step("node", "node", "node --version", rt.Node.MinVersion, inst.node, "node")},
		{rt.Python, p.step("python", "python3", "python3 --version && python3 -m pip --version >/dev/null && python3 -m venv -h >/dev/null", rt.Python.MinVersion, inst.python, "python")},
		{rt.Go, p.step("go", "go", "go version", rt.Go.MinVersion, inst.golang, "go")},
		{rt.Rust, p.step("rust", "rustc", "rustc --version && cargo --version >/dev/null", rt.Rust.MinVersion, inst.rust, "rust")},
	}

	defs := make([]provision.Definition, 0, len(candidates))
	for _, c := range candidates {
		if c.cfg.Enabled {
			defs = append(defs, c.def)
		}
	}
	return provision.BuildAll(defs)
}

func (p *Provider) step(name, tool, probe, minimum string, install InstallFunc, formula string) *Step {
	return &Step{
		name:     name,
		tool:     tool,
		probe:    probe,
		minimum:  minimum,
		install:  install,
		fallback: p.fallback,
		formula:  formula,
		local:    p.runners.Local,
	}
}

var _ provision.Provider = (*Provider)(nil)
