// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zero88/sxbuild/internal/codegen"
	"github.com/zero88/sxbuild/internal/config"
	"github.com/zero88/sxbuild/internal/dag"
	"github.com/zero88/sxbuild/internal/docs"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/internal/versionpool"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// guidance returns the issue catalog entry explaining err, or nil.
func guidance(err error) *issue.Issue {
	var (
		cycle *dag.CycleError
		ce    *issue.ConfigurationError
	)
	switch {
	case errors.Is(err, buildfile.ErrNotFound):
		return issue.Get(issue.BuildfileNotFoundId)
	case errors.Is(err, buildfile.ErrInvalid):
		return issue.Get(issue.BuildfileParseErrorId)
	case errors.Is(err, catalog.ErrInvalidCatalog):
		return issue.Get(issue.CatalogParseErrorId)
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.Get(issue.ConfigLoadFailedId)
	case errors.Is(err, versionpool.ErrMissingEntry):
		return issue.Get(issue.VersionEntryMissingId)
	case errors.Is(err, catalog.ErrUnknownRole):
		return issue.Get(issue.DependencyRoleMissingId)
	case errors.As(err, &cycle):
		return issue.Get(issue.DependencyCycleId)
	case errors.Is(err, modgraph.ErrLayerViolation):
		return issue.Get(issue.LayerViolationId)
	case errors.As(err, &ce) && strings.HasPrefix(ce.Key, "projectPool."):
		return issue.Get(issue.DocsPoolMismatchId)
	case errors.Is(err, docs.ErrRenderer):
		return issue.Get(issue.RendererFailedId)
	case errors.Is(err, codegen.ErrGeneration):
		return issue.Get(issue.GenerationFailedId)
	}
	return nil
}

// printGenerationErrors writes the batch of skipped members, one per line.
func printGenerationErrors(w io.Writer, errs codegen.GenerationErrors) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %d member(s) could not be generated\n", errorIcon, len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "   %s %s: %s\n", PathStyle.Render(e.Target), e.Member, SubtitleStyle.Render(e.Reason))
	}
}
