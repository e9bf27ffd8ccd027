// Package commandutil holds helpers shared by the providers for running and
// probing external commands.
package commandutil

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// userPathSetup makes tools installed by user-level installers (rustup, nvm,
// the Go tarball, Homebrew on Linux) resolvable in a fresh non-login shell.
const userPathSetup = `export PATH="$HOME/.cargo/bin:/usr/local/go/bin:/home/linuxbrew/.linuxbrew/bin:$HOME/.local/bin:$PATH"; ` +
	`[ -s "$HOME/.nvm/nvm.sh" ] && . "$HOME/.nvm/nvm.sh"; `

// IsCommandNotFound reports whether an error indicates a missing executable.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return true
	}
	return false
}

// UserShell returns a bash invocation running script with the user tool
// locations on PATH.
func UserShell(script string) (string, []string) {
	return "bash", []string{"-c", userPathSetup + script}
}

// Output runs a command and returns its combined output. A non-zero exit is
// returned as a *ports.CommandError.
func Output(ctx context.Context, runner ports.CommandRunner, command string, args ...string) (string, error) {
	result, err := runner.Run(ctx, command, args...)
	if err != nil {
		return "", err
	}
	if err := result.Err(command, args...); err != nil {
		return "", err
	}
	return result.Output(), nil
}

// UserOutput runs script through UserShell and returns its output.
func UserOutput(ctx context.Context, runner ports.CommandRunner, script string) (string, error) {
	command, args := UserShell(script)
	return Output(ctx, runner, command, args...)
}

// Download fetches url to dest with curl, failing on HTTP errors.
func Download(ctx context.Context, runner ports.CommandRunner, url, dest string) error {
	return ports.Exec(ctx, runner, "curl", "-fsSL", "-o", dest, url)
}

// Runners pairs the runner used for local probes with the one used for
// network-bound work. Network is usually a retrying runner; probes must not
// be retried because a non-zero exit is an answer, not a failure.
type Runners struct {
	Local   ports.CommandRunner
	Network ports.CommandRunner
}

// Single uses runner for both local and network commands.
func Single(runner ports.CommandRunner) Runners {
	return Runners{Local: runner, Network: runner}
}
