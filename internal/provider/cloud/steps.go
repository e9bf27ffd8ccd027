// Package cloud installs the cloud and infrastructure CLIs: AWS CLI v2,
// Azure CLI, kubectl and Terraform.
package cloud

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

type actionFunc func(ctx context.Context) error

// ToolStep installs one CLI. The tool is Present when its version command
// succeeds.
type ToolStep struct {
	name     string
	title    string
	probe    string
	install  actionFunc
	verify   actionFunc
	fallback ports.Installer
	formula  string
	local    ports.CommandRunner
}

// Name returns the step name, e.g. "cloud:aws".
func (s *ToolStep) Name() string {
	return "cloud:" + s.name
}

// Description returns a human-readable description.
func (s *ToolStep) Description() string {
	return "Install " + s.title
}

// Check runs the version command.
func (s *ToolStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	if _, err := commandutil.UserOutput(ctx.Context(), s.local, s.probe); err != nil {
		return provision.Absent, nil
	}
	return provision.Present, nil
}

// Apply runs the vendor installer.
func (s *ToolStep) Apply(ctx provision.RunContext) error {
	return s.install(ctx.Context())
}

// Fallback installs the Homebrew formula.
func (s *ToolStep) Fallback(ctx provision.RunContext) error {
	if s.fallback == nil || s.formula == "" {
		return provision.Skip("no Homebrew formula for " + s.title)
	}
	return s.fallback.Install(ctx.Context(), s.formula)
}

// Verify runs the version command and any tool-specific verification.
func (s *ToolStep) Verify(ctx provision.RunContext) error {
	out, err := commandutil.UserOutput(ctx.Context(), s.local, s.probe)
	if err != nil {
		return fmt.Errorf("%s does not run: %w", s.title, err)
	}
	ctx.Logger().Debug(ctx.Context(), "tool version", ports.F("output", out))
	if s.verify != nil {
		return s.verify(ctx.Context())
	}
	return nil
}
