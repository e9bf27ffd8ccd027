package app

import (
	"fmt"

	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/platform"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/apt"
	"github.com/felixgeelhaar/wslup/internal/provider/brew"
	"github.com/felixgeelhaar/wslup/internal/provider/cloud"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
	"github.com/felixgeelhaar/wslup/internal/provider/docker"
	"github.com/felixgeelhaar/wslup/internal/provider/git"
	"github.com/felixgeelhaar/wslup/internal/provider/runtime"
	"github.com/felixgeelhaar/wslup/internal/provider/ssh"
	"github.com/felixgeelhaar/wslup/internal/provider/windows"
)

// Deps carries everything the providers are built from.
type Deps struct {
	Config   *config.Config
	Platform *platform.Platform
	FS       ports.FileSystem
	Runners  commandutil.Runners
	Prompter ports.Prompter
	User     string
}

// Providers returns the provider catalog in execution order: the Windows
// host first, then packages, runtimes, tools and the user's identity.
func Providers(d Deps) []provision.Provider {
	aptInstaller := apt.NewInstaller(d.Runners)
	brewProvider := brew.NewProvider(d.Config, d.FS, d.Runners)
	fallback := brewProvider.Installer()

	return []provision.Provider{
		windows.NewProvider(d.Config, d.Platform, d.Runners, d.FS),
		apt.NewProvider(d.Config, d.Runners, fallback),
		brewProvider,
		runtime.NewProvider(d.Config, d.Runners, d.FS, aptInstaller, fallback, d.Platform.Arch()),
		cloud.NewProvider(d.Config, d.Runners, d.FS, fallback, d.Platform.Arch()),
		docker.NewProvider(d.Config, d.Runners, d.FS, aptInstaller, d.User),
		git.NewProvider(d.Config, d.Runners.Local, d.FS, d.Prompter),
		ssh.NewProvider(d.Config, d.FS, d.Runners.Local),
	}
}

// BuildRegistry registers every provider's steps in order. Steps named in
// the configuration's optional list are registered as optional.
func BuildRegistry(cfg *config.Config, providers ...provision.Provider) (*provision.Registry, error) {
	registry := provision.NewRegistry()
	for _, p := range providers {
		steps, err := p.Steps()
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
		}
		for _, step := range steps {
			if cfg.IsOptional(step.Name()) {
				step = step.WithOptionalOverride(true)
			}
			if err := registry.Register(step); err != nil {
				return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
			}
		}
	}
	return registry, nil
}
