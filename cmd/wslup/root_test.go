package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/app"
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/execution"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
)

type fakeClient struct {
	report execution.Report
	steps  []app.StepInfo
	err    error

	opts     app.Options
	observer execution.Observer
}

func (f *fakeClient) Run(_ context.Context, opts app.Options) (execution.Report, error) {
	f.opts = opts
	return f.report, f.err
}

func (f *fakeClient) List(opts app.Options) ([]app.StepInfo, error) {
	f.opts = opts
	return f.steps, f.err
}

func useFakeClient(t *testing.T, client *fakeClient) {
	t.Helper()
	orig := newApp
	newApp = func(_ io.Writer, observer execution.Observer) wslupClient {
		client.observer = observer
		return client
	}
	t.Cleanup(func() { newApp = orig })
}

func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		cfgFile, verbose, yesFlag = "", false, false
		checkFlag, fixFlag, fixWarningsFlag = false, false, false
		onlyFlag, logFileFlag, jsonFlag = nil, "", false
		for _, fs := range []*pflag.FlagSet{rootCmd.Flags(), rootCmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) { f.Changed = false })
		}
	}
	reset()
	t.Cleanup(reset)
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func sampleReport(t *testing.T, mode execution.RunMode) execution.Report {
	t.Helper()
	step := func(name string, optional bool) provision.Step {
		return provision.MustNewStep(name,
			func(provision.RunContext) (provision.Presence, error) { return provision.Present, nil },
			func(provision.RunContext) error { return nil },
			provision.WithOptional(optional),
		)
	}
	agg := execution.NewAggregator(mode)
	agg.Record(execution.NewEntry(step("apt:package:git", false), provision.Success()))
	agg.Record(execution.NewEntry(step("cloud:aws", true), provision.Failure(errors.New("unzip missing"))))
	return agg.Report()
}

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "wslup", rootCmd.Use)
}

func TestRootCommand_HasFlags(t *testing.T) {
	for _, name := range []string{"check", "fix", "fix-warnings", "only", "log-file", "json"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
	for _, name := range []string{"config", "verbose", "yes"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCommand_ModeFlags(t *testing.T) {
	tests := []struct {
		args []string
		want execution.RunMode
	}{
		{nil, execution.ModeFullInstall},
		{[]string{"--check"}, execution.ModeCheckOnly},
		{[]string{"--fix"}, execution.ModeFixMissing},
		{[]string{"--fix-warnings"}, execution.ModeFixWarnings},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			resetFlags(t)
			client := &fakeClient{report: sampleReport(t, tt.want)}
			useFakeClient(t, client)

			_, _, err := executeCommand(t, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.want, client.opts.Mode)
		})
	}
}

func TestRootCommand_ModeFlagsAreExclusive(t *testing.T) {
	resetFlags(t)
	client := &fakeClient{}
	useFakeClient(t, client)

	_, _, err := executeCommand(t, "--check", "--fix")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
	assert.Empty(t, client.opts.Mode)
}

func TestRootCommand_PassesOptions(t *testing.T) {
	resetFlags(t)
	client := &fakeClient{report: sampleReport(t, execution.ModeFixMissing)}
	useFakeClient(t, client)

	_, _, err := executeCommand(t, "--fix", "--only", "apt:package:git,cloud:aws",
		"--config", "/tmp/wslup.toml", "--log-file", "/tmp/run.log", "--yes", "--verbose")

	require.NoError(t, err)
	assert.Equal(t, app.Options{
		ConfigPath: "/tmp/wslup.toml",
		Mode:       execution.ModeFixMissing,
		Only:       []string{"apt:package:git", "cloud:aws"},
		LogFile:    "/tmp/run.log",
		Verbose:    true,
		Yes:        true,
	}, client.opts)
}

func TestRootCommand_TextReport(t *testing.T) {
	resetFlags(t)
	client := &fakeClient{report: sampleReport(t, execution.ModeFullInstall)}
	useFakeClient(t, client)

	stdout, _, err := executeCommand(t)

	require.NoError(t, err)
	assert.NotNil(t, client.observer)
	assert.Contains(t, stdout, "wslup summary (Full Install)")
	assert.Contains(t, stdout, "1 passed")
	assert.Contains(t, stdout, "1 warned")
}

func TestRootCommand_JSONReport(t *testing.T) {
	resetFlags(t)
	client := &fakeClient{report: sampleReport(t, execution.ModeCheckOnly)}
	useFakeClient(t, client)

	stdout, _, err := executeCommand(t, "--check", "--json")

	require.NoError(t, err)
	assert.Nil(t, client.observer)

	var summary execution.Summary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "check-only", summary.Mode)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Warned)
}

func TestRootCommand_FailedStepsStillSucceed(t *testing.T) {
	resetFlags(t)
	agg := execution.NewAggregator(execution.ModeFullInstall)
	agg.Record(execution.NewEntry(provision.MustNewStep("docker:engine",
		func(provision.RunContext) (provision.Presence, error) { return provision.Absent, nil },
		func(provision.RunContext) error { return nil },
	), provision.Failure(errors.New("boom"))))
	useFakeClient(t, &fakeClient{report: agg.Report()})

	stdout, _, err := executeCommand(t)

	require.NoError(t, err)
	assert.Contains(t, stdout, "1 failed")
}

func TestRootCommand_PreconditionErrorFails(t *testing.T) {
	resetFlags(t)
	netErr := &app.NetworkError{Probes: []string{"github.com:443"}, Cause: errors.New("timeout")}
	useFakeClient(t, &fakeClient{err: netErr})

	_, _, err := executeCommand(t)

	require.ErrorIs(t, err, netErr)
}

func TestFormatError(t *testing.T) {
	resetFlags(t)

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "user error",
			err: config.NewUserError(config.ErrCodeValidationFailed, "retry.attempts must be between 1 and 10").
				WithContext("/home/ada/.wslup/wslup.yaml").
				WithSuggestion("Set retry.attempts to 3."),
			contains: []string{"retry.attempts", "(at /home/ada/.wslup/wslup.yaml)", "Suggestion: Set retry.attempts to 3."},
		},
		{
			name:     "single validation problem",
			err:      singleProblem(),
			contains: []string{"retry.attempts: must be between 1 and 10, got 0", "(at retry.attempts)", "Suggestion: Set retry.attempts to 3."},
		},
		{
			name: "several validation problems",
			err:  fmt.Errorf("load: %w", severalProblems()),
			contains: []string{
				"configuration has 2 problems:",
				"  - retry.attempts: must be between 1 and 10, got 0",
				"    Suggestion: Set retry.attempts to 3.",
				"  - ssh.type: unsupported key type \"rsa\"",
				"    Suggestion: Only ed25519 keys are generated.",
			},
		},
		{
			name:     "network error",
			err:      &app.NetworkError{Probes: []string{"github.com:443"}, Cause: errors.New("i/o timeout")},
			contains: []string{"github.com:443", "Suggestion:"},
		},
		{
			name:     "plain error",
			err:      errors.New("something broke"),
			contains: []string{"something broke"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := formatError(tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func singleProblem() error {
	list := config.NewErrorList()
	list.AddValidation("retry.attempts", "must be between 1 and 10, got 0", "Set retry.attempts to 3.")
	return list.AsError()
}

func severalProblems() error {
	list := config.NewErrorList()
	list.AddValidation("retry.attempts", "must be between 1 and 10, got 0", "Set retry.attempts to 3.")
	list.AddValidation("ssh.type", "unsupported key type \"rsa\"", "Only ed25519 keys are generated.")
	return list.AsError()
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("no network"))
	assert.Equal(t, "Error: no network\n", buf.String())
}
