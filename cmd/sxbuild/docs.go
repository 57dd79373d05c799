// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/zero88/sxbuild/internal/docs"
	"github.com/zero88/sxbuild/internal/pipeline"

	"github.com/spf13/cobra"
)

type docsFlags struct {
	out     string
	preview bool
	width   int
}

func newDocsCommand(app *App) *cobra.Command {
	var flags docsFlags
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Aggregate the documentation bundle",
		Long: `Collect the API reference and documentation fragments of every module
in the project pool into one site bundle.

Facades are generated first so their reference pages are current. When
the docs module names a renderer, it runs once over the finished bundle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.loadProject()
			if err != nil {
				return app.fail(cmd, err)
			}
			res, err := app.execute(cmd, p, pipeline.Options{Docs: true, DocsDir: flags.out})
			if err != nil {
				return app.fail(cmd, err)
			}
			if flags.preview && res.Bundle != nil {
				out, err := docs.Preview(res.Bundle, app.glamourStyle(), flags.width)
				if err != nil {
					return app.fail(cmd, err)
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "bundle directory (default <docs module>/build/antora)")
	cmd.Flags().BoolVar(&flags.preview, "preview", false, "render the bundle index in the terminal")
	cmd.Flags().IntVar(&flags.width, "width", 80, "word wrap width of the preview")
	return cmd
}
