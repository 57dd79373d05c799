// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/zero88/sxbuild/internal/pipeline"

	"github.com/spf13/cobra"
)

func newPublishPlanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "publish-plan",
		Short: "Show which modules are published and their artifacts",
		Long: `Apply the publish gate to the finalized module tree, generated facade
modules included, and list the artifacts each published module would
distribute. Modules on the skip list are reported as skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, pipeline.Options{Publish: true})
		},
	}
}
