// Package apt installs Debian packages with apt-get and exposes apt as a
// ports.Installer.
package apt

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// Installer implements ports.Installer on top of dpkg-query, apt-cache and
// apt-get.
type Installer struct {
	runners commandutil.Runners
}

// NewInstaller creates an apt Installer.
func NewInstaller(runners commandutil.Runners) *Installer {
	return &Installer{runners: runners}
}

// Name returns "apt".
func (i *Installer) Name() string {
	return "apt"
}

// Installed reports whether dpkg records the package as installed.
// A package dpkg has never heard of is not installed, not an error.
func (i *Installer) Installed(ctx context.Context, pkg string) (bool, error) {
	result, err := i.runners.Local.Run(ctx, "dpkg-query", "-W", "-f=${db:Status-Status}", pkg)
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, nil
	}
	return strings.TrimSpace(result.Stdout) == "installed", nil
}

// IsAvailable reports whether apt has an install candidate for the package.
func (i *Installer) IsAvailable(ctx context.Context, pkg string) bool {
	result, err := i.runners.Local.Run(ctx, "apt-cache", "policy", pkg)
	if err != nil || !result.Success() {
		return false
	}
	for _, line := range strings.Split(result.Stdout, "\n") {
		candidate, ok := strings.CutPrefix(strings.TrimSpace(line), "Candidate:")
		if !ok {
			continue
		}
		candidate = strings.TrimSpace(candidate)
		return candidate != "" && candidate != "(none)"
	}
	return false
}

// Install installs the package non-interactively. It returns an error
// wrapping ports.ErrPackageUnavailable when apt has no candidate for it.
func (i *Installer) Install(ctx context.Context, pkg string) error {
	if !i.IsAvailable(ctx, pkg) {
		return fmt.Errorf("apt %s: %w", pkg, ports.ErrPackageUnavailable)
	}
	return ports.Exec(ctx, i.runners.Network,
		"sudo", "DEBIAN_FRONTEND=noninteractive", "apt-get", "install", "-y", "--no-install-recommends", pkg)
}

var _ ports.Installer = (*Installer)(nil)
