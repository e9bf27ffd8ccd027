package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wslup/internal/app"
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/domain/execution"
	"github.com/felixgeelhaar/wslup/internal/tui/ui"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	yesFlag bool

	// Run flags
	checkFlag       bool
	fixFlag         bool
	fixWarningsFlag bool
	onlyFlag        []string
	logFileFlag     string
	jsonFlag        bool
)

var rootCmd = &cobra.Command{
	Use:   "wslup",
	Short: "Prepare Windows for WSL2 and provision a Linux dev environment",
	Long: `wslup enables WSL2 on the Windows host, installs a Linux distribution and
provisions it with CLI packages, language runtimes, cloud tools, Docker, a git
identity and an SSH key.

Every step is checked first and only installed when missing:
  Check → Apply (→ Fallback) → Verify → Report

Without a mode flag everything missing is installed and everything present
is verified.`,
	Args:          cobra.NoArgs,
	RunE:          runRoot,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// wslupClient is the part of app.App the commands use.
type wslupClient interface {
	Run(context.Context, app.Options) (execution.Report, error)
	List(app.Options) ([]app.StepInfo, error)
}

var newApp = func(errOut io.Writer, observer execution.Observer) wslupClient {
	a := app.New(errOut)
	if observer != nil {
		a = a.WithObserver(observer)
	}
	return a
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.wslup/wslup.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")

	rootCmd.Flags().BoolVar(&checkFlag, "check", false, "only report what is installed, change nothing")
	rootCmd.Flags().BoolVar(&fixFlag, "fix", false, "install only what is missing")
	rootCmd.Flags().BoolVar(&fixWarningsFlag, "fix-warnings", false, "rerun only optional steps")
	rootCmd.Flags().StringSliceVar(&onlyFlag, "only", nil, "run only the named steps (see `wslup list`)")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "run log file (default: ~/.wslup/wslup.log)")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "print the report as JSON")
	rootCmd.MarkFlagsMutuallyExclusive("check", "fix", "fix-warnings")

	registerFlagCompletions()

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// selectedMode maps the mode flags to a run mode.
func selectedMode() execution.RunMode {
	switch {
	case checkFlag:
		return execution.ModeCheckOnly
	case fixFlag:
		return execution.ModeFixMissing
	case fixWarningsFlag:
		return execution.ModeFixWarnings
	default:
		return execution.ModeFullInstall
	}
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	styles := ui.NewStyles(out)

	var observer execution.Observer
	if !jsonFlag {
		observer = ui.NewProgress(out, styles)
	}

	report, err := newApp(cmd.ErrOrStderr(), observer).Run(ctx, app.Options{
		ConfigPath: cfgFile,
		Mode:       selectedMode(),
		Only:       onlyFlag,
		LogFile:    logFileFlag,
		Verbose:    verbose,
		Yes:        yesFlag,
	})
	if err != nil {
		return err
	}

	if jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(execution.Summarize(report))
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, ui.RenderReport(report, styles))
	return nil
}

// suggester is implemented by errors that carry a hint for the user.
type suggester interface {
	Suggestion() string
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) && list.Len() > 1 {
		return formatErrorList(list)
	}

	if userErr := config.GetUserError(err); userErr != nil {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var hinted suggester
	if errors.As(err, &hinted) && hinted.Suggestion() != "" {
		return fmt.Sprintf("%s\n\nSuggestion: %s", err.Error(), hinted.Suggestion())
	}
	return err.Error()
}

// formatErrorList lists every configuration problem with its suggestion.
func formatErrorList(list *config.ErrorList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "configuration has %d problems:", list.Len())
	for _, e := range list.Errors() {
		fmt.Fprintf(&b, "\n  - %s", e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(&b, "\n    Suggestion: %s", e.Suggestion)
		}
	}
	return b.String()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("only", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		steps, err := newApp(io.Discard, nil).List(app.Options{ConfigPath: cfgFile})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(steps))
		for _, s := range steps {
			names = append(names, s.Name+"\t"+s.Description)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}
