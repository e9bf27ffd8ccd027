package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/execution"
	"github.com/felixgeelhaar/wslup/internal/domain/platform"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/testutil/mocks"
)

const testConfigPath = "/etc/wslup/wslup.yaml"

// minimalConfig keeps the catalog down to apt:update, apt:package:git,
// brew:install and git:identity.
const minimalConfig = `
retry:
  attempts: 1
  delay: 0s
network:
  skip: true
packages:
  apt: [git]
  brew_names:
    git: ""
runtimes:
  node: {enabled: false}
  python: {enabled: false}
  go: {enabled: false}
  rust: {enabled: false}
cloud: {aws: false, azure: false, kubectl: false, terraform: false}
docker: {enabled: false}
ssh: {enabled: false}
identity: {name: Ada Lovelace, email: ada@example.com}
`

type testApp struct {
	app      *App
	runner   *mocks.CommandRunner
	fs       *mocks.FileSystem
	prompter *mocks.Prompter
	stderr   *bytes.Buffer
	logFile  string
}

func newTestApp(t *testing.T, cfg string) *testApp {
	t.Helper()

	fs := mocks.NewFileSystem()
	fs.AddFile(testConfigPath, cfg)
	runner := mocks.NewCommandRunner()
	prompter := mocks.NewPrompter(ports.Identity{Name: "Ada Lovelace", Email: "ada@example.com"})
	stderr := &bytes.Buffer{}

	a := New(stderr).
		WithFileSystem(fs).
		WithRunner(runner).
		WithPlatform(platform.New(platform.OSLinux, "amd64", platform.EnvNative)).
		WithDialer(&fakeDialer{}).
		WithPrompter(prompter).
		WithEnv(func(string) string { return "ada" })

	return &testApp{
		app:      a,
		runner:   runner,
		fs:       fs,
		prompter: prompter,
		stderr:   stderr,
		logFile:  filepath.Join(t.TempDir(), "wslup.log"),
	}
}

func (ta *testApp) options(mode execution.RunMode) Options {
	return Options{ConfigPath: testConfigPath, Mode: mode, LogFile: ta.logFile}
}

func TestApp_Run_CheckOnlyReportsEveryStep(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, minimalConfig)

	report, err := ta.app.Run(context.Background(), ta.options(execution.ModeCheckOnly))

	require.NoError(t, err)
	assert.Equal(t, 4, report.Total())
	assert.Equal(t, 0, report.Passed())
	assert.Equal(t, 4, report.Warned()+report.Failed())

	for _, call := range ta.runner.Calls() {
		assert.NotEqual(t, "sudo", call.Command, "check-only must not change the system: %s", call)
	}

	data, err := os.ReadFile(ta.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id=")
	assert.Contains(t, string(data), "Summary (check-only)")
	assert.Equal(t, 1, strings.Count(string(data), "run started"))
	assert.Equal(t, 1, strings.Count(string(data), "run finished"))
	assert.Contains(t, string(data), "required steps failed")
}

func TestApp_Run_FixMissingInstallsAbsentPackage(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, minimalConfig)
	dpkg := []string{"-W", "-f=${db:Status-Status}", "git"}
	ta.runner.AddSequence("dpkg-query", dpkg,
		ports.CommandResult{ExitCode: 1, Stderr: "dpkg-query: no packages found matching git"},
		ports.CommandResult{Stdout: "installed"},
	)
	ta.runner.AddResult("apt-cache", []string{"policy", "git"}, ports.CommandResult{
		Stdout: "git:\n  Installed: (none)\n  Candidate: 1:2.43.0-1ubuntu7\n",
	})
	install := []string{"DEBIAN_FRONTEND=noninteractive", "apt-get", "install", "-y", "--no-install-recommends", "git"}
	ta.runner.AddResult("sudo", install, ports.CommandResult{})

	opts := ta.options(execution.ModeFixMissing)
	opts.Only = []string{"apt:package:git"}
	report, err := ta.app.Run(context.Background(), opts)

	require.NoError(t, err)
	require.Equal(t, 1, report.Total())
	assert.Equal(t, 1, report.Passed())
	assert.True(t, report.Entries()[0].Applied())
	assert.Equal(t, 1, ta.runner.CallCount("sudo", install...))
}

func TestApp_Run_UnknownSelectionFails(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, minimalConfig)

	opts := ta.options(execution.ModeCheckOnly)
	opts.Only = []string{"does:not:exist"}
	_, err := ta.app.Run(context.Background(), opts)

	require.Error(t, err)
	assert.Empty(t, ta.runner.Calls())
}

func TestApp_Run_InvalidConfigIsUserError(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, "retry:\n  attempts: 0\n")

	_, err := ta.app.Run(context.Background(), ta.options(execution.ModeFullInstall))

	var userErr *config.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Empty(t, ta.runner.Calls())
}

func TestApp_Run_NetworkPrecondition(t *testing.T) {
	t.Parallel()

	online := strings.Replace(minimalConfig, "  skip: true", "  probes: [\"github.com:443\"]", 1)

	tests := []struct {
		name    string
		mode    execution.RunMode
		wantErr bool
	}{
		{name: "full install needs network", mode: execution.ModeFullInstall, wantErr: true},
		{name: "fix missing needs network", mode: execution.ModeFixMissing, wantErr: true},
		{name: "check only does not", mode: execution.ModeCheckOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ta := newTestApp(t, online)

			_, err := ta.app.Run(context.Background(), ta.options(tt.mode))

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var netErr *NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Empty(t, ta.runner.Calls())
		})
	}
}

func TestApp_Run_DeclinedConfirmation(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, minimalConfig)
	ta.prompter.SetConfirm(false)

	_, err := ta.app.Run(context.Background(), ta.options(execution.ModeFullInstall))

	require.ErrorIs(t, err, ErrDeclined)
	assert.Empty(t, ta.runner.Calls())
}

func TestApp_Run_ConfirmationAnswers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
		proceed bool
	}{
		{name: "aborted form declines", err: ports.ErrAborted, wantErr: ErrDeclined},
		{name: "broken terminal fails", err: errTTYClosed, wantErr: errTTYClosed},
		{name: "no terminal proceeds", err: ports.ErrNoAnswer, proceed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ta := newTestApp(t, minimalConfig)
			ta.prompter.SetError(tt.err)

			_, err := ta.app.Run(context.Background(), ta.options(execution.ModeFullInstall))

			if tt.proceed {
				require.NoError(t, err)
				assert.NotEmpty(t, ta.runner.Calls())
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, ta.runner.Calls())
		})
	}
}

var errTTYClosed = errors.New("tty closed")

func TestApp_Run_VerboseLogsToConsole(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, minimalConfig)

	opts := ta.options(execution.ModeCheckOnly)
	opts.Verbose = true
	_, err := ta.app.Run(context.Background(), opts)

	require.NoError(t, err)
	assert.Contains(t, ta.stderr.String(), "run started")
	assert.Contains(t, ta.stderr.String(), "step=git:identity")
}

func TestApp_List(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t, minimalConfig)

	steps, err := ta.app.List(Options{ConfigPath: testConfigPath})

	require.NoError(t, err)
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"apt:update", "apt:package:git", "brew:install", "git:identity"}, names)
	assert.True(t, steps[2].Optional)
	assert.False(t, steps[3].Optional)
	assert.Empty(t, ta.runner.Calls())
}
