// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/zero88/sxbuild/internal/capability"
	"github.com/zero88/sxbuild/internal/config"
	"github.com/zero88/sxbuild/internal/history"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/pipeline"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reaches configuration and the project through it.
	App struct {
		Config   config.Provider
		Registry *capability.Registry
		stdout   io.Writer
		stderr   io.Writer

		flags  globalFlags
		cfg    *config.Config
		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Registry *capability.Registry
		Stdout   io.Writer
		Stderr   io.Writer
	}

	globalFlags struct {
		verbose    bool
		configFile string
		project    string
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:   deps.Config,
		Registry: deps.Registry,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Registry == nil {
		app.Registry = capability.Default()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// init loads the user configuration and installs the logger. A broken
// config file is reported and the defaults are used.
func (a *App) init(ctx context.Context) error {
	cfg, _, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg = config.DefaultConfig()
	}
	if !a.flags.verbose {
		a.flags.verbose = cfg.UI.Verbose
	}
	a.cfg = cfg

	level := cfg.Log.Level.Slog()
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = newLogger(a.stderr, level)
	slog.SetDefault(slog.New(a.logger))
	return nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configFile}
}

// newLogger returns the charm logger used as the slog handler of the CLI.
func newLogger(w io.Writer, level slog.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "sxbuild",
		Level:  log.Level(level),
	})
}

// projectDir returns the absolute --project directory.
func (a *App) projectDir() (string, error) {
	return filepath.Abs(a.flags.project)
}

func (a *App) loadProject() (*pipeline.Project, error) {
	dir, err := a.projectDir()
	if err != nil {
		return nil, err
	}
	return pipeline.Load(dir, a.Registry)
}

func (a *App) parallelism() int {
	if a.cfg != nil && a.cfg.Build.Parallelism > 0 {
		return a.cfg.Build.Parallelism
	}
	return runtime.NumCPU()
}

// openHistory opens the task history of the project, or returns nil when
// history is disabled. A history that cannot be opened only costs
// up-to-date checks.
func (a *App) openHistory(root string) *history.Store {
	if a.cfg == nil || !a.cfg.Build.History {
		return nil
	}
	path := a.cfg.Build.HistoryPath
	if path == "" {
		path = config.DefaultHistoryPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(path))
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("task history disabled", "path", path, "error", err)
		return nil
	}
	return store
}

// fail reports err with its guidance and returns the ExitError carrying its
// exit status.
func (a *App) fail(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.flags.verbose))
	if a.flags.verbose {
		if entry := guidance(err); entry != nil {
			if rendered, rerr := entry.Render(a.glamourStyle()); rerr == nil {
				fmt.Fprint(cmd.ErrOrStderr(), rendered)
			}
		}
	}
	return &ExitError{Code: exitCode(err)}
}

// glamourStyle maps the configured color scheme to a glamour style.
func (a *App) glamourStyle() string {
	if a.cfg == nil {
		return "auto"
	}
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
