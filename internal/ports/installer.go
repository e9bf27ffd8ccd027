package ports

import (
	"context"
	"errors"
)

// Installer is a package manager capability.
// Implementations shell out to apt, Homebrew, winget and friends so the
// provisioning core stays testable without touching the system.
type Installer interface {
	// Name returns the package manager name (e.g. "apt").
	Name() string

	// Installed reports whether the package is already installed.
	Installed(ctx context.Context, pkg string) (bool, error)

	// IsAvailable reports whether the package can be installed from the
	// manager's configured sources.
	IsAvailable(ctx context.Context, pkg string) bool

	// Install installs the package.
	Install(ctx context.Context, pkg string) error
}

// ErrPackageUnavailable is returned by Install when the package is not in the
// manager's sources. Callers treat it like any other install failure.
var ErrPackageUnavailable = errors.New("package not available")
