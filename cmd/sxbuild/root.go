// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for sxbuild.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "sxbuild",
		Short: "Build and codegen orchestration for scheduler.x",
		Long: TitleStyle.Render("sxbuild") + SubtitleStyle.Render(" - build and codegen orchestration for scheduler.x") + `

sxbuild reads the project descriptor (sxbuild.cue) and the version
catalog it names, finalizes every module's dependencies, generates the
reactive facades of the core API, aggregates the documentation bundle
and decides which modules are published.

` + SubtitleStyle.Render("Examples:") + `
  sxbuild modules              List the module tree
  sxbuild resolve vertx 4 4    Resolve one version pool entry
  sxbuild generate --watch     Regenerate facades when the core API changes
  sxbuild build                Run every stage`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/sxbuild/config.cue)")
	flags.StringVarP(&app.flags.project, "project", "C", ".", "project directory holding sxbuild.cue")

	root.AddCommand(
		newResolveCommand(app),
		newModulesCommand(app),
		newGenerateCommand(app),
		newDocsCommand(app),
		newPublishPlanCommand(app),
		newBuildCommand(app),
		newConfigCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the status of the failed command.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitCode(err))
	}
}

// errorHandler leaves errors already reported by a command handler alone.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
