// Package app wires configuration, platform detection, providers and the
// executor into a wslup run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wslup/internal/adapters/command"
	"github.com/felixgeelhaar/wslup/internal/adapters/filesystem"
	"github.com/felixgeelhaar/wslup/internal/adapters/logging"
	"github.com/felixgeelhaar/wslup/internal/adapters/prompt"
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/execution"
	"github.com/felixgeelhaar/wslup/internal/domain/platform"
	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
	"github.com/felixgeelhaar/wslup/internal/provider/commandutil"
)

// ErrDeclined is returned when the user answers no to the run confirmation.
var ErrDeclined = errors.New("run declined by user")

// Options are the per-invocation settings, usually taken from CLI flags.
type Options struct {
	ConfigPath string
	Mode       execution.RunMode
	Only       []string
	LogFile    string
	Verbose    bool
	JSONLogs   bool
	Yes        bool
}

// App is the wslup application.
type App struct {
	errOut      io.Writer
	fs          ports.FileSystem
	runner      ports.CommandRunner
	platform    *platform.Platform
	dialer      Dialer
	prompter    ports.Prompter
	observer    execution.Observer
	interactive func() bool
	getenv      func(string) string
}

// New creates an App using the real system. Console logs go to errOut.
func New(errOut io.Writer) *App {
	return &App{
		errOut:      errOut,
		fs:          filesystem.NewRealFileSystem(),
		runner:      command.NewRealRunner(),
		dialer:      &net.Dialer{},
		interactive: prompt.IsTerminal,
		getenv:      os.Getenv,
	}
}

// WithFileSystem replaces the filesystem.
func (a *App) WithFileSystem(fs ports.FileSystem) *App {
	c := *a
	c.fs = fs
	return &c
}

// WithRunner replaces the command runner. Network commands still go through
// a retrying wrapper around it.
func (a *App) WithRunner(runner ports.CommandRunner) *App {
	c := *a
	c.runner = runner
	return &c
}

// WithPlatform fixes the platform instead of detecting it.
func (a *App) WithPlatform(p *platform.Platform) *App {
	c := *a
	c.platform = p
	return &c
}

// WithDialer replaces the dialer used by the network precondition.
func (a *App) WithDialer(d Dialer) *App {
	c := *a
	c.dialer = d
	return &c
}

// WithPrompter fixes the prompter instead of choosing one per run.
func (a *App) WithPrompter(p ports.Prompter) *App {
	c := *a
	c.prompter = p
	return &c
}

// WithObserver reports step progress to observer.
func (a *App) WithObserver(observer execution.Observer) *App {
	c := *a
	c.observer = observer
	return &c
}

// WithEnv replaces the environment lookup.
func (a *App) WithEnv(getenv func(string) string) *App {
	c := *a
	c.getenv = getenv
	return &c
}

// StepInfo describes a registered step.
type StepInfo struct {
	Name        string
	Description string
	Optional    bool
}

// List loads the configuration and returns the steps a run would consider,
// in execution order. Nothing is checked or applied.
func (a *App) List(opts Options) ([]StepInfo, error) {
	cfg, _, err := config.NewLoader(a.fs).Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	registry, err := a.registry(cfg, commandutil.Single(a.runner), prompt.NewStaticPrompter(identityOf(cfg), true))
	if err != nil {
		return nil, err
	}

	steps := registry.All()
	infos := make([]StepInfo, 0, len(steps))
	for _, step := range steps {
		infos = append(infos, StepInfo{
			Name:        step.Name(),
			Description: step.Description(),
			Optional:    step.Optional(),
		})
	}
	return infos, nil
}

// Run performs one provisioning run. Step failures are part of the report;
// an error is returned only for configuration problems, a failed network
// precondition, a declined confirmation or an invalid selection.
func (a *App) Run(ctx context.Context, opts Options) (execution.Report, error) {
	mode := opts.Mode
	if mode == "" {
		mode = execution.ModeFullInstall
	}

	cfg, cfgPath, err := config.NewLoader(a.fs).Load(opts.ConfigPath)
	if err != nil {
		return execution.Report{}, err
	}

	logger, closeLog, err := a.openLogger(cfg, opts)
	if err != nil {
		return execution.Report{}, err
	}
	defer closeLog()

	logger.Info(ctx, "configuration loaded",
		ports.F("mode", mode.String()),
		ports.F("config", cfgPath),
	)

	runners := commandutil.Runners{
		Local: a.runner,
		Network: command.NewRetryRunner(a.runner,
			command.WithAttempts(cfg.Retry.Attempts),
			command.WithDelay(cfg.Retry.Delay.Std()),
			command.WithRetryLogger(logger),
		),
	}

	if mode.MayApply() && !cfg.Network.Skip {
		if err := CheckNetwork(ctx, a.dialer, cfg.Network.Probes, cfg.Network.Timeout.Std()); err != nil {
			logger.Error(ctx, "network precondition failed", ports.F("error", err.Error()))
			return execution.Report{}, err
		}
	}

	prompter := a.choosePrompter(cfg, opts)
	registry, err := a.registry(cfg, runners, prompter)
	if err != nil {
		return execution.Report{}, err
	}
	logger.Debug(ctx, "registry built", ports.F("steps", strings.Join(registry.Names(), ",")))

	if mode.MayApply() {
		ok, err := prompter.Confirm(ctx, fmt.Sprintf("Run wslup in %s mode? Missing components will be installed.", mode), true)
		switch {
		case errors.Is(err, ports.ErrNoAnswer):
			// Nobody to ask.
		case errors.Is(err, ports.ErrAborted), err == nil && !ok:
			logger.Info(ctx, "run declined")
			return execution.Report{}, ErrDeclined
		case err != nil:
			return execution.Report{}, err
		}
	}

	executor := execution.NewExecutor().WithLogger(logger)
	if a.observer != nil {
		executor = executor.WithObserver(a.observer)
	}
	if len(opts.Only) > 0 {
		executor = executor.WithSelection(opts.Only...)
	}

	report, err := executor.Run(ctx, mode, registry)
	if err != nil {
		return execution.Report{}, err
	}

	if w, ok := logger.(ports.LineWriter); ok {
		_ = w.WriteLine(execution.RenderText(report))
	}
	if report.HasFailures() {
		logger.Warn(ctx, "required steps failed", ports.F("failed", report.Failed()))
	}

	return report, nil
}

func (a *App) platformInfo() *platform.Platform {
	if a.platform != nil {
		return a.platform
	}
	return platform.NewDetector(a.fs).Detect()
}

func (a *App) registry(cfg *config.Config, runners commandutil.Runners, prompter ports.Prompter) (*provision.Registry, error) {
	deps := Deps{
		Config:   cfg,
		Platform: a.platformInfo(),
		FS:       a.fs,
		Runners:  runners,
		Prompter: prompter,
		User:     a.user(),
	}
	return BuildRegistry(cfg, Providers(deps)...)
}

func (a *App) choosePrompter(cfg *config.Config, opts Options) ports.Prompter {
	if a.prompter != nil {
		return a.prompter
	}
	if opts.Yes || !a.interactive() {
		return prompt.NewStaticPrompter(identityOf(cfg), opts.Yes)
	}
	return prompt.NewFormPrompter()
}

// openLogger builds the run logger: console on errOut plus the append-only
// run log. Every event carries the run id.
func (a *App) openLogger(cfg *config.Config, opts Options) (ports.Logger, func(), error) {
	consoleLevel := ports.LevelWarn
	if opts.Verbose {
		consoleLevel = ports.LevelDebug
	}
	console := logging.NewConsoleLogger(
		logging.WithOutput(a.errOut),
		logging.WithLevel(consoleLevel),
		logging.WithJSONFormat(opts.JSONLogs || cfg.Log.JSON),
	)

	path := opts.LogFile
	if path == "" {
		path = cfg.Log.File
	}
	if path == "" {
		return console.With(ports.F("run_id", uuid.NewString())), func() {}, nil
	}

	fileLevel, err := ports.ParseLevel(cfg.Log.Level)
	if err != nil {
		fileLevel = ports.LevelInfo
	}
	file, err := logging.OpenFileLogger(path, fileLevel)
	if err != nil {
		return nil, nil, config.NewUserError(config.ErrCodeFilePermission, "cannot open run log").
			WithContext(path).
			WithSuggestion("Pass --log-file with a writable path or set log.file in the configuration.").
			WithUnderlying(err)
	}

	logger := logging.NewMultiLogger(console, file).With(ports.F("run_id", uuid.NewString()))
	return logger, func() { _ = file.Close() }, nil
}

func (a *App) user() string {
	if u := a.getenv("USER"); u != "" {
		return u
	}
	return a.getenv("LOGNAME")
}

func identityOf(cfg *config.Config) ports.Identity {
	return ports.Identity{Name: cfg.Identity.Name, Email: cfg.Identity.Email}
}
