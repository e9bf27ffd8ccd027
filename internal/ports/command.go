// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"fmt"
	"strings"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Output returns stdout and stderr joined, trimmed of surrounding whitespace.
func (r CommandResult) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr))
}

// Err converts a failed result into a *CommandError. Successful results yield nil.
func (r CommandResult) Err(command string, args ...string) error {
	if r.Success() {
		return nil
	}
	return &CommandError{
		Command:  command,
		Args:     args,
		ExitCode: r.ExitCode,
		Output:   r.Output(),
	}
}

// CommandError describes a command that exited with a non-zero status.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Output   string
}

// Error returns the formatted error message.
func (e *CommandError) Error() string {
	line := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	if e.Output == "" {
		return fmt.Sprintf("%s exited with code %d", line, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", line, e.ExitCode, lastLine(e.Output))
}

// lastLine keeps error messages to one line; installers print the cause last.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// String returns the command line.
func (c CommandCall) String() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}

// Exec runs a command and folds a non-zero exit into the returned error.
func Exec(ctx context.Context, runner CommandRunner, command string, args ...string) error {
	result, err := runner.Run(ctx, command, args...)
	if err != nil {
		return err
	}
	return result.Err(command, args...)
}
