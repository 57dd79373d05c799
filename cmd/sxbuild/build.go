// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/zero88/sxbuild/internal/dag"
	"github.com/zero88/sxbuild/internal/pipeline"
	"github.com/zero88/sxbuild/internal/publish"

	"github.com/spf13/cobra"
)

func newBuildCommand(app *App) *cobra.Command {
	var docsDir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate facades, aggregate docs and plan publication",
		Long: `Run every stage of the build in dependency order.

Facade generation, documentation aggregation and the publish gate share
one task graph. Tasks whose inputs did not change since the last
successful run are reported as up to date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, pipeline.Options{
				Docs:    true,
				Publish: true,
				DocsDir: docsDir,
			})
		},
	}
	cmd.Flags().StringVarP(&docsDir, "out", "o", "", "documentation bundle directory (default <docs module>/build/antora)")
	return cmd
}

// run executes one pipeline run for the command and prints its outcome.
func (a *App) run(cmd *cobra.Command, opts pipeline.Options) error {
	p, err := a.loadProject()
	if err != nil {
		return a.fail(cmd, err)
	}
	if _, err := a.execute(cmd, p, opts); err != nil {
		return a.fail(cmd, err)
	}
	return nil
}

// execute runs p with the app's parallelism and history and prints what the
// run produced. The result is nil when planning failed.
func (a *App) execute(cmd *cobra.Command, p *pipeline.Project, opts pipeline.Options) (*pipeline.Result, error) {
	opts.Parallelism = a.parallelism()
	opts.Stdout = cmd.OutOrStdout()
	opts.Stderr = cmd.ErrOrStderr()
	if opts.DocsDir != "" && !filepath.IsAbs(opts.DocsDir) {
		abs, err := filepath.Abs(opts.DocsDir)
		if err != nil {
			return nil, err
		}
		opts.DocsDir = abs
	}
	if store := a.openHistory(p.Descriptor.Dir); store != nil {
		defer store.Close() //nolint:errcheck // read-mostly store
		opts.History = store
	}

	res, err := p.Run(cmd.Context(), opts)
	if res != nil {
		printResult(cmd.OutOrStdout(), res, a.flags.verbose)
	}
	return res, err
}

func printResult(w io.Writer, res *pipeline.Result, verbose bool) {
	if res.Report != nil {
		fmt.Fprintln(w, TitleStyle.Render("Tasks"))
		for _, r := range res.Report.Results {
			printTask(w, r, verbose)
		}
	}

	if len(res.Generated) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render("Generated"))
		for _, gm := range res.Generated {
			fmt.Fprintf(w, "%s %s  %s  %d member(s), %d file(s) written\n",
				successIcon, PathStyle.Render(gm.Target), gm.ImportPath, gm.Members, gm.Written)
		}
	}
	if len(res.GenerationErrors) > 0 {
		fmt.Fprintln(w)
		printGenerationErrors(w, res.GenerationErrors)
	}

	if res.Bundle != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, TitleStyle.Render("Documentation"))
		fmt.Fprintf(w, "%s %s  %d module(s), %d file(s) written\n",
			successIcon, PathStyle.Render(res.Bundle.Dir), len(res.Bundle.Modules), res.Bundle.Written)
	}

	if len(res.Decisions) > 0 {
		fmt.Fprintln(w)
		printDecisions(w, res.Decisions)
	}
}

func printTask(w io.Writer, r dag.Result, verbose bool) {
	switch r.State {
	case dag.Succeeded:
		fmt.Fprintf(w, "%s %s", successIcon, r.ID)
	case dag.UpToDate:
		fmt.Fprintf(w, "%s %s %s", successIcon, r.ID, SubtitleStyle.Render("(up to date)"))
	case dag.Failed:
		fmt.Fprintf(w, "%s %s %s", errorIcon, r.ID, ErrorStyle.Render("failed"))
	default:
		fmt.Fprintf(w, "%s %s %s", skipIcon, r.ID, SubtitleStyle.Render(r.State.String()))
	}
	if verbose {
		fmt.Fprintf(w, " %s", SubtitleStyle.Render(r.Duration.String()))
	}
	fmt.Fprintln(w)
}

func printDecisions(w io.Writer, decisions []publish.Decision) {
	fmt.Fprintln(w, TitleStyle.Render("Publication"))
	for _, d := range decisions {
		if d.Outcome == publish.Skip {
			fmt.Fprintf(w, "%s %s %s\n", skipIcon, PathStyle.Render(d.Path.String()), SubtitleStyle.Render("skip"))
			continue
		}
		fmt.Fprintf(w, "%s %s\n", successIcon, PathStyle.Render(d.Path.String()))
		for _, c := range d.Artifacts {
			fmt.Fprintf(w, "   %s\n", c)
		}
	}
}
