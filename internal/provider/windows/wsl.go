package windows

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/wslup/internal/domain/platform"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// DefaultVersionStep makes WSL2 the default for new distributions.
type DefaultVersionStep struct {
	platform *platform.Platform
	runner   ports.CommandRunner
}

// NewDefaultVersionStep creates the wsl:default-version step.
func NewDefaultVersionStep(p *platform.Platform, runner ports.CommandRunner) *DefaultVersionStep {
	return &DefaultVersionStep{platform: p, runner: runner}
}

// Name returns "wsl:default-version".
func (s *DefaultVersionStep) Name() string {
	return "wsl:default-version"
}

// Description returns a human-readable description.
func (s *DefaultVersionStep) Description() string {
	return "Set the WSL default version to 2"
}

// Check reads "Default Version: 2" from wsl --status.
func (s *DefaultVersionStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	out, err := runWSL(ctx.Context(), s.platform, s.runner, "--status")
	if err != nil {
		return provision.Absent, err
	}
	for _, line := range lines(out) {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(key) == "Default Version" {
			if strings.TrimSpace(value) == "2" {
				return provision.Present, nil
			}
			return provision.Absent, nil
		}
	}
	return provision.Absent, nil
}

// Apply runs wsl --set-default-version 2.
func (s *DefaultVersionStep) Apply(ctx provision.RunContext) error {
	_, err := runWSL(ctx.Context(), s.platform, s.runner, "--set-default-version", "2")
	return err
}

// DistroStep installs the Linux distribution.
type DistroStep struct {
	name     string
	wingetID string
	platform *platform.Platform
	runners  commandutil.Runners
}

// NewDistroStep creates the wsl:distro step.
func NewDistroStep(name, wingetID string, p *platform.Platform, runners commandutil.Runners) *DistroStep {
	return &DistroStep{name: name, wingetID: wingetID, platform: p, runners: runners}
}

// Name returns "wsl:distro".
func (s *DistroStep) Name() string {
	return "wsl:distro"
}

// Description returns a human-readable description.
func (s *DistroStep) Description() string {
	return "Install the " + s.name + " WSL distribution"
}

// Check looks for the distribution in wsl --list --quiet. wsl exits non-zero
// when no distribution is installed at all.
func (s *DistroStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	out, err := runWSL(ctx.Context(), s.platform, s.runners.Local, "--list", "--quiet")
	if err != nil {
		var cmdErr *ports.CommandError
		if errors.As(err, &cmdErr) {
			return provision.Absent, nil
		}
		return provision.Absent, err
	}
	for _, line := range lines(out) {
		if strings.EqualFold(line, s.name) {
			return provision.Present, nil
		}
	}
	return provision.Absent, nil
}

// Apply runs wsl --install without launching the distribution.
func (s *DistroStep) Apply(ctx provision.RunContext) error {
	_, err := runWSL(ctx.Context(), s.platform, s.runners.Network, "--install", "-d", s.name, "--no-launch")
	return err
}

// Fallback installs the distribution package with winget.
func (s *DistroStep) Fallback(ctx provision.RunContext) error {
	if s.wingetID == "" {
		return provision.Skip("no winget package configured for " + s.name)
	}
	return ports.Exec(ctx.Context(), s.runners.Network, s.platform.WindowsExe("winget"),
		"install", "--id", s.wingetID, "--exact", "--silent",
		"--accept-source-agreements", "--accept-package-agreements")
}

// WSLConfPath is the per-distribution WSL configuration file.
const WSLConfPath = "/etc/wsl.conf"

const wslConfStaging = "/tmp/wslup-wsl.conf"

// SystemdStep enables systemd in /etc/wsl.conf so services such as the
// Docker daemon start with the distribution.
type SystemdStep struct {
	fs     ports.FileSystem
	runner ports.CommandRunner
}

// NewSystemdStep creates the wsl:systemd step.
func NewSystemdStep(fs ports.FileSystem, runner ports.CommandRunner) *SystemdStep {
	return &SystemdStep{fs: fs, runner: runner}
}

// Name returns "wsl:systemd".
func (s *SystemdStep) Name() string {
	return "wsl:systemd"
}

// Description returns a human-readable description.
func (s *SystemdStep) Description() string {
	return "Enable systemd in " + WSLConfPath
}

// Check reads [boot] systemd from wsl.conf.
func (s *SystemdStep) Check(_ provision.RunContext) (provision.Presence, error) {
	conf, err := s.load()
	if err != nil {
		return provision.Absent, err
	}
	if enabled, _ := conf.Section("boot").Key("systemd").Bool(); enabled {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply sets [boot] systemd=true, keeping the rest of the file, and
// installs the result with sudo.
func (s *SystemdStep) Apply(ctx provision.RunContext) error {
	conf, err := s.load()
	if err != nil {
		return err
	}
	conf.Section("boot").Key("systemd").SetValue("true")

	var buf bytes.Buffer
	if _, err := conf.WriteTo(&buf); err != nil {
		return fmt.Errorf("render %s: %w", WSLConfPath, err)
	}
	if err := s.fs.WriteFile(wslConfStaging, buf.Bytes(), 0o644); err != nil {
		return err
	}
	defer func() { _ = s.fs.Remove(wslConfStaging) }()

	if err := ports.Exec(ctx.Context(), s.runner, "sudo", "install", "-m", "0644", wslConfStaging, WSLConfPath); err != nil {
		return err
	}
	ctx.Logger().Warn(ctx.Context(), "run `wsl.exe --shutdown` from Windows for systemd to start")
	return nil
}

func (s *SystemdStep) load() (*ini.File, error) {
	if !s.fs.Exists(WSLConfPath) {
		return ini.Empty(), nil
	}
	data, err := s.fs.ReadFile(WSLConfPath)
	if err != nil {
		return nil, err
	}
	conf, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", WSLConfPath, err)
	}
	return conf, nil
}
