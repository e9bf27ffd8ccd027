package apt

import (
	"fmt"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// listsMaxAge is how old, in minutes, the package lists may be before
// apt:update runs again.
const listsMaxAge = "-1440"

// UpdateStep refreshes the apt package lists.
type UpdateStep struct {
	runners commandutil.Runners
}

// NewUpdateStep creates the apt:update step.
func NewUpdateStep(runners commandutil.Runners) *UpdateStep {
	return &UpdateStep{runners: runners}
}

// Name returns "apt:update".
func (s *UpdateStep) Name() string {
	return "apt:update"
}

// Description returns a human-readable description.
func (s *UpdateStep) Description() string {
	return "Refresh apt package lists"
}

// Check reports Present when some package list was refreshed within the last day.
func (s *UpdateStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	out, err := commandutil.Output(ctx.Context(), s.runners.Local,
		"find", "/var/lib/apt/lists", "-maxdepth", "1", "-name", "*_Packages", "-mmin", listsMaxAge)
	if err != nil {
		return provision.Absent, err
	}
	if out == "" {
		return provision.Absent, nil
	}
	return provision.Present, nil
}

// Apply runs apt-get update.
func (s *UpdateStep) Apply(ctx provision.RunContext) error {
	return ports.Exec(ctx.Context(), s.runners.Network, "sudo", "apt-get", "update")
}

// PackageStep installs one package with apt, falling back to another
// installer (Homebrew) under a possibly different package name.
type PackageStep struct {
	pkg          string
	apt          ports.Installer
	fallback     ports.Installer
	fallbackName string
}

// NewPackageStep creates the apt:package:<pkg> step. fallback may be nil and
// fallbackName empty, in which case the step has no usable fallback.
func NewPackageStep(pkg string, apt, fallback ports.Installer, fallbackName string) *PackageStep {
	return &PackageStep{
		pkg:          pkg,
		apt:          apt,
		fallback:     fallback,
		fallbackName: fallbackName,
	}
}

// Name returns the step name.
func (s *PackageStep) Name() string {
	return "apt:package:" + s.pkg
}

// Description returns a human-readable description.
func (s *PackageStep) Description() string {
	return fmt.Sprintf("Install %s", s.pkg)
}

// Check reports whether the package is installed with apt or, when a
// fallback exists, with the fallback installer.
func (s *PackageStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	installed, err := s.installed(ctx)
	if err != nil {
		return provision.Absent, err
	}
	if installed {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply installs the package with apt.
func (s *PackageStep) Apply(ctx provision.RunContext) error {
	return s.apt.Install(ctx.Context(), s.pkg)
}

// Fallback installs the package with the fallback installer.
func (s *PackageStep) Fallback(ctx provision.RunContext) error {
	if s.fallback == nil || s.fallbackName == "" {
		return provision.Skip(fmt.Sprintf("no fallback package for %s", s.pkg))
	}
	ctx.Logger().Info(ctx.Context(), "installing with fallback",
		ports.F("installer", s.fallback.Name()),
		ports.F("package", s.fallbackName),
	)
	return s.fallback.Install(ctx.Context(), s.fallbackName)
}

// Verify confirms one of the installers now reports the package.
func (s *PackageStep) Verify(ctx provision.RunContext) error {
	installed, err := s.installed(ctx)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("%s is not installed", s.pkg)
	}
	return nil
}

func (s *PackageStep) installed(ctx provision.RunContext) (bool, error) {
	ok, err := s.apt.Installed(ctx.Context(), s.pkg)
	if err != nil || ok {
		return ok, err
	}
	if s.fallback == nil || s.fallbackName == "" {
		return false, nil
	}
	ok, fbErr := s.fallback.Installed(ctx.Context(), s.fallbackName)
	if fbErr != nil {
		// the fallback manager may simply not be installed yet
		return false, nil
	}
	return ok, nil
}
