// Package docker installs the Docker engine inside the distribution and
// grants the current user access to it.
package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

const (
	getDockerURL    = "https://get.docker.com"
	getDockerScript = "/tmp/wslup-get-docker.sh"
	aptPackage      = "docker.io"
	group           = "docker"
)

// EngineStep installs the Docker engine with the convenience script and
// falls back to the distribution's docker.io package.
type EngineStep struct {
	runners commandutil.Runners
	fs      ports.FileSystem
	apt     ports.Installer
}

// NewEngineStep creates the docker:engine step.
func NewEngineStep(runners commandutil.Runners, fs ports.FileSystem, apt ports.Installer) *EngineStep {
	return &EngineStep{runners: runners, fs: fs, apt: apt}
}

// Name returns "docker:engine".
func (s *EngineStep) Name() string {
	return "docker:engine"
}

// Description returns a human-readable description.
func (s *EngineStep) Description() string {
	return "Install the Docker engine"
}

// Check reports whether the docker CLI is installed. A missing executable or
// a failing docker --version means absent; any other error is returned.
func (s *EngineStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	_, err := commandutil.Output(ctx.Context(), s.runners.Local, "docker", "--version")
	if err == nil {
		return provision.Present, nil
	}

	var exitErr *ports.CommandError
	if commandutil.IsCommandNotFound(err) || errors.As(err, &exitErr) {
		return provision.Absent, nil
	}
	return provision.Absent, fmt.Errorf("probe docker: %w", err)
}

// Apply runs get.docker.com.
func (s *EngineStep) Apply(ctx provision.RunContext) error {
	if err := commandutil.Download(ctx.Context(), s.runners.Network, getDockerURL, getDockerScript); err != nil {
		return fmt.Errorf("download docker install script: %w", err)
	}
	defer func() { _ = s.fs.Remove(getDockerScript) }()
	return ports.Exec(ctx.Context(), s.runners.Network, "sudo", "sh", getDockerScript)
}

// Fallback installs docker.io from apt.
func (s *EngineStep) Fallback(ctx provision.RunContext) error {
	if s.apt == nil {
		return provision.Skip("no apt installer")
	}
	return s.apt.Install(ctx.Context(), aptPackage)
}

// Verify starts the daemon when it is not running and queries it.
func (s *EngineStep) Verify(ctx provision.RunContext) error {
	c := ctx.Context()
	if err := s.ensureRunning(c); err != nil {
		return err
	}
	out, err := commandutil.Output(c, s.runners.Local, "sudo", "docker", "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return fmt.Errorf("docker daemon not reachable: %w", err)
	}
	ctx.Logger().Debug(c, "docker server", ports.F("version", out))
	return nil
}

func (s *EngineStep) ensureRunning(ctx context.Context) error {
	result, err := s.runners.Local.Run(ctx, "sudo", "service", "docker", "status")
	if err != nil {
		return err
	}
	if result.Success() {
		return nil
	}
	return ports.Exec(ctx, s.runners.Local, "sudo", "service", "docker", "start")
}

// GroupStep adds the user to the docker group so docker runs without sudo.
type GroupStep struct {
	user   string
	runner ports.CommandRunner
}

// NewGroupStep creates the docker:group step for user.
func NewGroupStep(user string, runner ports.CommandRunner) *GroupStep {
	return &GroupStep{user: user, runner: runner}
}

// Name returns "docker:group".
func (s *GroupStep) Name() string {
	return "docker:group"
}

// Description returns a human-readable description.
func (s *GroupStep) Description() string {
	return "Add the current user to the docker group"
}

// Check reports whether the user is a member of the docker group. Root
// needs no membership.
func (s *GroupStep) Check(ctx provision.RunContext) (provision.Presence, error) {
	switch s.user {
	case "":
		return provision.Absent, provision.Skip("current user unknown")
	case "root":
		return provision.Present, nil
	}

	out, err := commandutil.Output(ctx.Context(), s.runner, "getent", "group", group)
	if err != nil {
		// no docker group yet
		return provision.Absent, nil
	}
	if isMember(out, s.user) {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply adds the user to the group. It takes effect in new login sessions.
func (s *GroupStep) Apply(ctx provision.RunContext) error {
	if err := ports.Exec(ctx.Context(), s.runner, "sudo", "usermod", "-aG", group, s.user); err != nil {
		return err
	}
	ctx.Logger().Info(ctx.Context(), "group membership applies after the next login", ports.F("user", s.user))
	return nil
}

// isMember parses a getent group line ("docker:x:999:alice,bob").
func isMember(line, user string) bool {
	fields := strings.Split(strings.TrimSpace(line), ":")
	if len(fields) < 4 {
		return false
	}
	for _, member := range strings.Split(fields[3], ",") {
		if strings.TrimSpace(member) == user {
			return true
		}
	}
	return false
}
