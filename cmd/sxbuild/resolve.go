// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zero88/sxbuild/internal/pipeline"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"

	"github.com/spf13/cobra"
)

func newResolveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [family major patch]",
		Short: "Show the version catalog or resolve one pool entry",
		Long: `Show the version pools and role bindings of the catalog.

With a family, a major version and a patch index, print the single
resolved "<major>.<minor>" version instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("expected no arguments or <family> <major> <patch>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.projectDir()
			if err != nil {
				return app.fail(cmd, err)
			}
			desc, err := buildfile.Load(dir)
			if err != nil {
				return app.fail(cmd, err)
			}
			cat, err := pipeline.LoadCatalog(desc)
			if err != nil {
				return app.fail(cmd, err)
			}

			if len(args) == 0 {
				printCatalog(cmd.OutOrStdout(), cat)
				return nil
			}
			major, err := strconv.Atoi(args[1])
			if err != nil {
				return app.fail(cmd, fmt.Errorf("major version %q: %w", args[1], err))
			}
			patch, err := strconv.Atoi(args[2])
			if err != nil {
				return app.fail(cmd, fmt.Errorf("patch index %q: %w", args[2], err))
			}
			v, err := cat.Pool.Resolve(args[0], major, patch)
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, TitleStyle.Render("Version pools"))
	for _, family := range cat.Pool.Families() {
		fmt.Fprintf(w, "%s %s\n", infoIcon, PathStyle.Render(family))
		t := cat.Pool.Table(family)
		for _, major := range t.Majors() {
			minors := t.Minors(major)
			versions := make([]string, len(minors))
			for i, minor := range minors {
				versions[i] = fmt.Sprintf("%d.%d", major, minor)
			}
			fmt.Fprintf(w, "   %d: %s\n", major, strings.Join(versions, " "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Roles"))
	for _, role := range cat.Roles() {
		coords, err := cat.Resolve(role)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", infoIcon, PathStyle.Render(role))
		for _, c := range coords {
			fmt.Fprintf(w, "   %s\n", c)
		}
	}
}
