// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"

	"github.com/spf13/cobra"
)

func newModulesCommand(app *App) *cobra.Command {
	modulesCmd := &cobra.Command{
		Use:   "modules",
		Short: "List the finalized module tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.loadProject()
			if err != nil {
				return app.fail(cmd, err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, TitleStyle.Render("Modules"))
			for _, m := range p.Graph.Modules() {
				printModule(w, m)
			}
			return nil
		},
	}

	modulesCmd.AddCommand(&cobra.Command{
		Use:   "show <module path>",
		Short: "Show the dependency sets of one module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.loadProject()
			if err != nil {
				return app.fail(cmd, err)
			}
			m, ok := p.Graph.Module(buildfile.ModulePath(args[0]))
			if !ok {
				return app.fail(cmd, issue.NewErrorContext().
					WithOperation("show module").
					WithResource(args[0]).
					WithSuggestion("List the declared modules with 'sxbuild modules'").
					Wrap(errors.New("unknown module path")).
					BuildError())
			}

			w := cmd.OutOrStdout()
			printModule(w, m)
			g := p.Graph
			sets := []struct {
				name   string
				coords []catalog.Coordinate
			}{
				{"compile", g.CompileClasspath(m)},
				{"runtime", g.RuntimeClasspath(m)},
				{"test", g.TestClasspath(m)},
				{"testFixtures", g.TestFixturesClasspath(m)},
				{"codeGenerator", g.GeneratorClasspath(m)},
				{"exposed", g.Exposed(m)},
				{"published", g.Published(m)},
			}
			for _, s := range sets {
				if len(s.coords) == 0 {
					continue
				}
				fmt.Fprintf(w, "\n%s\n", SubtitleStyle.Render(s.name))
				for _, c := range s.coords {
					fmt.Fprintf(w, "   %s\n", c)
				}
			}
			return nil
		},
	})
	return modulesCmd
}

func printModule(w io.Writer, m *modgraph.Module) {
	fmt.Fprintf(w, "%s %s  %s  layer %d\n", infoIcon, PathStyle.Render(m.Path.String()), m.Coordinate(), m.Layer)
	if len(m.Capabilities) > 0 {
		fmt.Fprintf(w, "   capabilities: %s\n", strings.Join(m.Capabilities, ", "))
	}
	if len(m.Tasks) > 0 {
		fmt.Fprintf(w, "   tasks:        %s\n", strings.Join(m.Tasks, ", "))
	}
}
