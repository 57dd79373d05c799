// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/zero88/sxbuild/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `sxbuild config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sxbuild configuration",
		Long: `Manage sxbuild configuration.

Configuration is stored in:
  - Linux: ~/.config/sxbuild/config.cue
  - macOS: ~/Library/Application Support/sxbuild/config.cue
  - Windows: %APPDATA%\sxbuild\config.cue

Every value can be overridden with an SXBUILD_ environment variable,
for example SXBUILD_BUILD_PARALLELISM=2.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefault(app.loadOptions())
			if errors.Is(err, config.ErrConfigExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration already exists at %s\n", skipIcon, path)
				return nil
			}
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n", successIcon, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.FilePath(app.loadOptions())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, path, err := app.Config.Load(cmd.Context(), app.loadOptions())
	if err != nil {
		return app.fail(cmd, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", PathStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", PathStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", PathStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", SuccessStyle.Render(string(cfg.UI.ColorScheme)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", PathStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", SuccessStyle.Render(cfg.Log.Level.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", PathStyle.Render("build"))
	parallelism := fmt.Sprint(cfg.Build.Parallelism)
	if cfg.Build.Parallelism == 0 {
		parallelism += SubtitleStyle.Render(" (CPU count)")
	}
	fmt.Fprintf(w, "  parallelism: %s\n", SuccessStyle.Render(parallelism))
	fmt.Fprintf(w, "  history: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.Build.History)))
	historyPath := cfg.Build.HistoryPath
	if historyPath == "" {
		historyPath = config.DefaultHistoryPath
	}
	fmt.Fprintf(w, "  history_path: %s\n", SuccessStyle.Render(historyPath))
	return nil
}
