package brew

import (
	"fmt"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// InstallStep installs Homebrew on Linux.
type InstallStep struct {
	boot    *Bootstrapper
	runners commandutil.Runners
}

// NewInstallStep creates the brew:install step.
func NewInstallStep(boot *Bootstrapper, runners commandutil.Runners) *InstallStep {
	return &InstallStep{boot: boot, runners: runners}
}

// Name returns "brew:install".
func (s *InstallStep) Name() string {
	return "brew:install"
}

// Description returns a human-readable description.
func (s *InstallStep) Description() string {
	return "Install Homebrew on Linux"
}

// Check reports whether the brew executable exists.
func (s *InstallStep) Check(_ provision.RunContext) (provision.Presence, error) {
	if s.boot.Installed() {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply runs the Homebrew installer.
func (s *InstallStep) Apply(ctx provision.RunContext) error {
	return s.boot.Install(ctx.Context())
}

// Verify runs brew --version.
func (s *InstallStep) Verify(ctx provision.RunContext) error {
	_, err := commandutil.Output(ctx.Context(), s.runners.Local, Bin, "--version")
	return err
}

// FormulaStep installs one formula with Homebrew.
type FormulaStep struct {
	formula   string
	installer ports.Installer
}

// NewFormulaStep creates the brew:formula:<name> step.
func NewFormulaStep(formula string, installer ports.Installer) *FormulaStep {
	return &FormulaStep{formula: formula, installer: installer}
}

// Name returns the step name.
func (s *FormulaStep) Name() string {
	return "brew:formula:" + s.formula
}

// Description returns a human-readable description.
func (s *FormulaStep) Description() string {
	return fmt.Sprintf("Install %s with Homebrew", s.formula)
}

// Check reports whether the formula is installed.
func (s *FormulaStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	ok, err := s.installer.Installed(ctx.Context(), s.formula)
	if err != nil {
		return provision.Absent, err
	}
	if ok {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply installs the formula.
func (s *FormulaStep) Apply(ctx provision.RunContext) error {
	return s.installer.Install(ctx.Context(), s.formula)
}
