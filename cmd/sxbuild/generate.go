// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zero88/sxbuild/internal/codegen"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/pipeline"
	"github.com/zero88/sxbuild/internal/watch"

	"github.com/spf13/cobra"
)

type generateFlags struct {
	targets []string
	watch   bool
	list    bool
}

func newGenerateCommand(app *App) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the reactive facades of the core API",
		Long: `Generate one facade module per codegen target of every core module.

Members that cannot be expressed in a target idiom are skipped and
reported together after the run; the command then exits with status 3.

` + SubtitleStyle.Render("Examples:") + `
  sxbuild generate                   Generate every target
  sxbuild generate --target rx       Generate a single target
  sxbuild generate --watch           Regenerate when core sources change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.loadProject()
			if err != nil {
				return app.fail(cmd, err)
			}
			if flags.list {
				facades, err := p.Facades()
				if err != nil {
					return app.fail(cmd, err)
				}
				printFacades(cmd.OutOrStdout(), p.Descriptor.Dir, facades)
				return nil
			}

			opts := pipeline.Options{Targets: flags.targets}
			if _, err := app.execute(cmd, p, opts); err != nil {
				if !flags.watch {
					return app.fail(cmd, err)
				}
				// A watch session starts from a failing tree too.
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.flags.verbose))
			}
			if !flags.watch {
				return nil
			}
			return app.watch(cmd, p.WatchDirs(), opts)
		},
	}
	cmd.Flags().StringSliceVarP(&flags.targets, "target", "t", nil, "generate only the named target id or module path (repeatable)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate when core sources change")
	cmd.Flags().BoolVar(&flags.list, "list", false, "list the codegen targets and exit")
	return cmd
}

// watch regenerates on every change under dirs until the command's context
// is cancelled. The project is reloaded on every change so descriptor edits
// made while watching are picked up.
func (a *App) watch(cmd *cobra.Command, dirs []string, opts pipeline.Options) error {
	if len(dirs) == 0 {
		return a.fail(cmd, errors.New("no codegen source directories to watch"))
	}
	w, err := watch.New(watch.Config{
		Dirs:   dirs,
		Logger: slog.Default(),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s %d file(s) changed, regenerating\n", infoIcon, len(changed))
			p, err := a.loadProject()
			if err != nil {
				return err
			}
			_, err = a.execute(cmd, p, opts)
			var genErrs codegen.GenerationErrors
			if errors.As(err, &genErrs) {
				// Already printed with the result.
				return nil
			}
			return err
		},
	})
	if err != nil {
		return a.fail(cmd, issue.WrapWithContext(err, "watch core sources", strings.Join(dirs, ", ")))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s watching %s (Ctrl+C to stop)\n", infoIcon, strings.Join(dirs, ", "))
	if err := w.Run(cmd.Context()); err != nil {
		return a.fail(cmd, err)
	}
	return nil
}

func printFacades(w io.Writer, root string, facades map[string]codegen.Target) {
	fmt.Fprintln(w, TitleStyle.Render("Codegen targets"))
	for _, id := range slices.Sorted(maps.Keys(facades)) {
		t := facades[id]
		dir := t.Dir
		if rel, err := filepath.Rel(root, dir); err == nil {
			dir = filepath.ToSlash(rel)
		}
		fmt.Fprintf(w, "%s %s  %s  %s\n", infoIcon, PathStyle.Render(id), t.Idiom, dir)
	}
}
