package docker_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
	"github.com/felixgeelhaar/wslup/internal/provider/docker"
	"github.com/felixgeelhaar/wslup/internal/testutil/mocks"
)

var versionArgs = []string{"docker", "version", "--format", "{{.Server.Version}}"}

func runCtx() provision.RunContext {
	return provision.NewRunContext(context.Background())
}

func TestProvider_Steps(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		group   bool
		want    []string
	}{
		{name: "disabled", enabled: false, want: []string{}},
		{name: "engine only", enabled: true, want: []string{"docker:engine"}},
		{name: "engine and group", enabled: true, group: true, want: []string{"docker:engine", "docker:group"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Docker.Enabled = tt.enabled
			cfg.Docker.AddUserToGroup = tt.group

			steps, err := docker.NewProvider(cfg, commandutil.Single(mocks.NewCommandRunner()), mocks.NewFileSystem(), mocks.NewInstaller("apt"), "alice").Steps()
			require.NoError(t, err)

			names := make([]string, 0, len(steps))
			for _, s := range steps {
				names = append(names, s.Name())
			}
			assert.Equal(t, tt.want, names)
			if tt.group {
				assert.False(t, steps[0].Optional())
				assert.True(t, steps[1].Optional())
			}
		})
	}
}

func TestEngineStep_Check(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("docker", []string{"--version"}, ports.CommandResult{Stdout: "Docker version 27.3.1, build ce12230"})
	step := docker.NewEngineStep(commandutil.Single(runner), mocks.NewFileSystem(), nil)

	presence, err := step.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, provision.Present, presence)

	runner.Reset()
	runner.AddError("docker", []string{"--version"}, &ports.CommandError{Command: "docker", ExitCode: 127})
	presence, err = step.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, provision.Absent, presence)
}

func TestEngineStep_CheckErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "executable missing", err: &exec.Error{Name: "docker", Err: exec.ErrNotFound}},
		{name: "exit status", err: &ports.CommandError{Command: "docker", ExitCode: 1}},
		{name: "runner broken", err: errors.New("fork/exec: resource temporarily unavailable"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewCommandRunner()
			runner.AddError("docker", []string{"--version"}, tt.err)
			step := docker.NewEngineStep(commandutil.Single(runner), mocks.NewFileSystem(), nil)

			presence, err := step.Check(runCtx())
			assert.Equal(t, provision.Absent, presence)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEngineStep_FallbackToApt(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("curl", []string{"-fsSL", "-o", "/tmp/wslup-get-docker.sh", "https://get.docker.com"}, ports.CommandResult{})
	runner.AddResult("sudo", []string{"sh", "/tmp/wslup-get-docker.sh"}, ports.CommandResult{ExitCode: 1, Stderr: "ERROR: Unsupported distribution"})
	apt := mocks.NewInstaller("apt")
	apt.SetAvailable("docker.io")

	step, err := provision.Build(docker.NewEngineStep(commandutil.Single(runner), mocks.NewFileSystem(), apt))
	require.NoError(t, err)
	ctx := runCtx()

	require.Error(t, step.Apply(ctx))
	require.NoError(t, step.Fallback(ctx))
	assert.Equal(t, []string{"docker.io"}, apt.Installs())
}

func TestEngineStep_VerifyStartsDaemon(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"service", "docker", "status"}, ports.CommandResult{ExitCode: 3, Stdout: " * Docker is not running"})
	runner.AddResult("sudo", []string{"service", "docker", "start"}, ports.CommandResult{})
	runner.AddResult("sudo", versionArgs, ports.CommandResult{Stdout: "27.3.1"})

	step := docker.NewEngineStep(commandutil.Single(runner), mocks.NewFileSystem(), nil)
	require.NoError(t, step.Verify(runCtx()))
	assert.Equal(t, 1, runner.CallCount("sudo", "service", "docker", "start"))
}

func TestEngineStep_VerifyDaemonUnreachable(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"service", "docker", "status"}, ports.CommandResult{})
	runner.AddResult("sudo", versionArgs, ports.CommandResult{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"})

	err := docker.NewEngineStep(commandutil.Single(runner), mocks.NewFileSystem(), nil).Verify(runCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker daemon not reachable")
	assert.False(t, runner.Called("service docker start"))
}

func TestGroupStep_Check(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		getent   *ports.CommandResult
		want     provision.Presence
		wantSkip bool
	}{
		{name: "member", user: "alice", getent: &ports.CommandResult{Stdout: "docker:x:999:bob,alice\n"}, want: provision.Present},
		{name: "not member", user: "alice", getent: &ports.CommandResult{Stdout: "docker:x:999:bob\n"}, want: provision.Absent},
		{name: "no members", user: "alice", getent: &ports.CommandResult{Stdout: "docker:x:999:\n"}, want: provision.Absent},
		{name: "no group", user: "alice", getent: &ports.CommandResult{ExitCode: 2}, want: provision.Absent},
		{name: "root", user: "root", want: provision.Present},
		{name: "unknown user", user: "", wantSkip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewCommandRunner()
			if tt.getent != nil {
				runner.AddResult("getent", []string{"group", "docker"}, *tt.getent)
			}

			got, err := docker.NewGroupStep(tt.user, runner).Check(runCtx())
			if tt.wantSkip {
				_, ok := provision.AsSkip(err)
				assert.True(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupStep_Apply(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"usermod", "-aG", "docker", "alice"}, ports.CommandResult{})

	step := docker.NewGroupStep("alice", runner)
	require.NoError(t, step.Apply(runCtx()))
	assert.Equal(t, "docker:group", step.Name())
}
