// SPDX-License-Identifier: MPL-2.0

// Package publish decides which modules are eligible for distribution.
package publish

import (
	"log/slog"
	"slices"

	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// Outcome is the gate's decision for one module.
type Outcome int

const (
	// Publish marks a module whose artifacts are distributed.
	Publish Outcome = iota
	// Skip marks a module intentionally left out. It is a policy outcome,
	// not an error.
	Skip
)

func (o Outcome) String() string {
	if o == Skip {
		return "skip"
	}
	return "publish"
}

type (
	// Gate applies the skip list. The root module is never published.
	Gate struct {
		skip map[buildfile.ModulePath]bool
	}

	// Decision records the outcome for one module together with the
	// artifacts it would publish.
	Decision struct {
		Path      buildfile.ModulePath
		Outcome   Outcome
		Artifacts []catalog.Coordinate
		// Homepage is empty when the module carries no publication metadata.
		Homepage string
	}
)

// NewGate returns a gate skipping every path in skip.
func NewGate(skip []buildfile.ModulePath) *Gate {
	g := &Gate{skip: make(map[buildfile.ModulePath]bool, len(skip))}
	for _, p := range skip {
		g.skip[p] = true
	}
	return g
}

// ShouldPublish reports whether the module at p is published.
func (g *Gate) ShouldPublish(p buildfile.ModulePath) bool {
	return !p.IsRoot() && !g.skip[p]
}

// Apply sets the Publish flag of every module and returns the decisions in
// module order. Skip-list entries that match no module are logged.
func (g *Gate) Apply(modules []*modgraph.Module) []Decision {
	out := make([]Decision, 0, len(modules))
	seen := make(map[buildfile.ModulePath]bool, len(modules))
	for _, m := range modules {
		seen[m.Path] = true
		m.Publish = g.ShouldPublish(m.Path)

		d := Decision{Path: m.Path, Outcome: Skip}
		if m.Publish {
			d.Outcome = Publish
			d.Artifacts = Artifacts(m)
			d.Homepage = m.Publishing.Homepage
		} else {
			slog.Debug("publishing skipped", "module", m.Path)
		}
		out = append(out, d)
	}

	for p := range g.skip {
		if !seen[p] {
			slog.Warn("skip list names an unknown module", "module", p)
		}
	}
	return out
}

// Artifacts lists the coordinates a publishable module produces: its main
// artifact, plus the test fixtures artifact when the module has one.
func Artifacts(m *modgraph.Module) []catalog.Coordinate {
	out := []catalog.Coordinate{m.Coordinate()}
	if m.TestFixtures {
		out = append(out, m.FixturesCoordinate())
	}
	return out
}

// Publishable filters decisions down to the published paths.
func Publishable(decisions []Decision) []buildfile.ModulePath {
	var out []buildfile.ModulePath
	for _, d := range decisions {
		if d.Outcome == Publish {
			out = append(out, d.Path)
		}
	}
	return slices.Clip(out)
}
