// Package runtime installs the language runtimes (Node.js, Python, Go and
// Rust) and enforces their minimum versions.
package runtime

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
	"github.com/felixgeelhaar/wslup/internal/provider/versionutil"
)

// InstallFunc performs the primary install of a runtime.
type InstallFunc func(ctx context.Context) error

// Step installs one runtime. It is Present only when the runtime runs and
// reports at least the minimum version.
type Step struct {
	name     string
	tool     string
	probe    string
	minimum  string
	install  InstallFunc
	fallback ports.Installer
	formula  string
	local    ports.CommandRunner
}

// Name returns the step name, e.g. "runtime:node".
func (s *Step) Name() string {
	return "runtime:" + s.name
}

// Description returns a human-readable description.
func (s *Step) Description() string {
	if s.minimum == "" {
		return fmt.Sprintf("Install %s", s.tool)
	}
	return fmt.Sprintf("Install %s >= %s", s.tool, s.minimum)
}

// Check runs the version probe. A missing or too old runtime is Absent.
func (s *Step) Check(ctx provision.RunContext) (provision.Presence, error) {
	if err := s.satisfied(ctx.Context()); err != nil {
		ctx.Logger().Debug(ctx.Context(), "runtime not satisfied", ports.F("reason", err.Error()))
		return provision.Absent, nil
	}
	return provision.Present, nil
}

// Apply runs the primary installer.
func (s *Step) Apply(ctx provision.RunContext) error {
	return s.install(ctx.Context())
}

// Fallback installs the Homebrew formula.
func (s *Step) Fallback(ctx provision.RunContext) error {
	if s.fallback == nil || s.formula == "" {
		return provision.Skip("no Homebrew formula for " + s.tool)
	}
	return s.fallback.Install(ctx.Context(), s.formula)
}

// Verify requires the runtime to report at least the minimum version.
func (s *Step) Verify(ctx provision.RunContext) error {
	return s.satisfied(ctx.Context())
}

func (s *Step) satisfied(ctx context.Context) error {
	out, err := commandutil.UserOutput(ctx, s.local, s.probe)
	if err != nil {
		return err
	}
	return versionutil.Require(s.tool, out, s.minimum)
}
