package windows

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/domain/platform"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Windows optional features WSL2 needs.
const (
	FeatureWSL = "Microsoft-Windows-Subsystem-Linux"
	FeatureVMP = "VirtualMachinePlatform"
)

// dismRebootRequired is dism's exit code for "succeeded, restart needed".
const dismRebootRequired = 3010

// errNoInterop is the skip reason when Windows programs cannot be started.
const errNoInterop = "Windows executables cannot be run from this environment"

// FeatureStep enables one Windows optional feature.
type FeatureStep struct {
	feature  string
	platform *platform.Platform
	runner   ports.CommandRunner
}

// NewFeatureStep creates the windows:feature:<name> step.
func NewFeatureStep(feature string, p *platform.Platform, runner ports.CommandRunner) *FeatureStep {
	return &FeatureStep{feature: feature, platform: p, runner: runner}
}

// Name returns the step name.
func (s *FeatureStep) Name() string {
	return "windows:feature:" + s.feature
}

// Description returns a human-readable description.
func (s *FeatureStep) Description() string {
	return "Enable the Windows feature " + s.feature
}

// Check queries the feature state with dism. Running inside WSL2 proves both
// features are enabled.
func (s *FeatureStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	if s.platform.IsWSL2() {
		return provision.Present, nil
	}
	if !s.platform.CanRunWindows() {
		return provision.Absent, provision.Skip(errNoInterop)
	}

	result, err := s.runner.Run(ctx.Context(), s.platform.WindowsExe("dism"),
		"/online", "/get-featureinfo", "/featurename:"+s.feature)
	if err != nil {
		return provision.Absent, err
	}
	if err := result.Err("dism", "/get-featureinfo"); err != nil {
		return provision.Absent, err
	}
	if featureEnabled(result.Stdout) {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply enables the feature with dism.
func (s *FeatureStep) Apply(ctx provision.RunContext) error {
	if !s.platform.CanRunWindows() {
		return provision.Skip(errNoInterop)
	}
	result, err := s.runner.Run(ctx.Context(), s.platform.WindowsExe("dism"),
		"/online", "/enable-feature", "/featurename:"+s.feature, "/all", "/norestart")
	if err != nil {
		return err
	}
	if result.ExitCode == dismRebootRequired {
		ctx.Logger().Warn(ctx.Context(), "Windows restart required to finish enabling feature", ports.F("feature", s.feature))
		return nil
	}
	return result.Err("dism", "/enable-feature", "/featurename:"+s.feature)
}

// Fallback enables the feature through PowerShell.
func (s *FeatureStep) Fallback(ctx provision.RunContext) error {
	script := fmt.Sprintf("Enable-WindowsOptionalFeature -Online -FeatureName %s -All -NoRestart", s.feature)
	return ports.Exec(ctx.Context(), s.runner, s.platform.WindowsExe("powershell"),
		"-NoProfile", "-NonInteractive", "-Command", script)
}

// featureEnabled reads "State : Enabled" from dism output. A pending enable
// only waits for a restart.
func featureEnabled(out string) bool {
	for _, line := range strings.Split(decodeOutput(out), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "State" {
			continue
		}
		switch strings.TrimSpace(value) {
		case "Enabled", "Enable Pending":
			return true
		}
		return false
	}
	return false
}

// runWSL runs wsl.exe and returns its decoded output.
func runWSL(ctx context.Context, p *platform.Platform, runner ports.CommandRunner, args ...string) (string, error) {
	if !p.CanRunWindows() {
		return "", provision.Skip(errNoInterop)
	}
	result, err := runner.Run(ctx, p.WindowsExe("wsl"), args...)
	if err != nil {
		return "", err
	}
	out := decodeOutput(result.Stdout + result.Stderr)
	if !result.Success() {
		return out, &ports.CommandError{Command: "wsl.exe", Args: args, ExitCode: result.ExitCode, Output: strings.TrimSpace(out)}
	}
	return out, nil
}
