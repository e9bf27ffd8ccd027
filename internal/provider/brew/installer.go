// Package brew installs Homebrew on Linux and exposes it as a ports.Installer
// for packages apt lacks.
package brew

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

const (
	// Bin is the brew executable of a default Linux install.
	Bin = "/home/linuxbrew/.linuxbrew/bin/brew"

	installScriptURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"
	installScript    = "/tmp/wslup-brew-install.sh"
)

// ErrNotInstalled is returned when Homebrew is needed but missing.
var ErrNotInstalled = errors.New("homebrew is not installed")

// Bootstrapper installs Homebrew itself.
type Bootstrapper struct {
	fs      ports.FileSystem
	runners commandutil.Runners
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(fs ports.FileSystem, runners commandutil.Runners) *Bootstrapper {
	return &Bootstrapper{fs: fs, runners: runners}
}

// Installed reports whether the brew executable exists.
func (b *Bootstrapper) Installed() bool {
	return b.fs.Exists(Bin)
}

// Install downloads the official install script and runs it unattended.
// The download is the network-bound part and goes through the network runner.
func (b *Bootstrapper) Install(ctx context.Context) error {
	if err := commandutil.Download(ctx, b.runners.Network, installScriptURL, installScript); err != nil {
		return fmt.Errorf("download homebrew installer: %w", err)
	}
	defer func() { _ = b.fs.Remove(installScript) }()

	if err := ports.Exec(ctx, b.runners.Local, "env", "NONINTERACTIVE=1", "/bin/bash", installScript); err != nil {
		return fmt.Errorf("run homebrew installer: %w", err)
	}
	return nil
}

// Installer implements ports.Installer with Homebrew. Install bootstraps
// Homebrew first when it is missing.
type Installer struct {
	boot    *Bootstrapper
	runners commandutil.Runners
}

// NewInstaller creates a Homebrew Installer.
func NewInstaller(boot *Bootstrapper, runners commandutil.Runners) *Installer {
	return &Installer{boot: boot, runners: runners}
}

// Name returns "brew".
func (i *Installer) Name() string {
	return "brew"
}

// Installed reports whether the formula is installed.
func (i *Installer) Installed(ctx context.Context, formula string) (bool, error) {
	if !i.boot.Installed() {
		return false, nil
	}
	result, err := i.runners.Local.Run(ctx, Bin, "list", "--versions", formula)
	if err != nil {
		return false, err
	}
	return result.Success() && strings.TrimSpace(result.Stdout) != "", nil
}

// IsAvailable reports whether a formula of that name exists.
func (i *Installer) IsAvailable(ctx context.Context, formula string) bool {
	if !i.boot.Installed() {
		return false
	}
	result, err := i.runners.Local.Run(ctx, Bin, "info", "--formula", formula)
	return err == nil && result.Success()
}

// Install installs the formula, installing Homebrew first if needed.
func (i *Installer) Install(ctx context.Context, formula string) error {
	if !i.boot.Installed() {
		if err := i.boot.Install(ctx); err != nil {
			return err
		}
		if !i.boot.Installed() {
			return ErrNotInstalled
		}
	}
	if !i.IsAvailable(ctx, formula) {
		return fmt.Errorf("brew %s: %w", formula, ports.ErrPackageUnavailable)
	}
	return ports.Exec(ctx, i.runners.Network, "env", "HOMEBREW_NO_AUTO_UPDATE=1", Bin, "install", formula)
}

var _ ports.Installer = (*Installer)(nil)
