// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"path/filepath"
	"slices"

	"github.com/zero88/sxbuild/internal/capability"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// FixturesSuffix is appended to a module's base name for its test fixtures artifact.
const FixturesSuffix = "-test-fixtures"

// Module is a node of the module tree with its effective settings.
type Module struct {
	capability.Settings

	Path         buildfile.ModulePath
	Name         string
	BaseName     string
	Group        string
	Version      string
	Title        string
	Dir          string
	Layer        int
	Capabilities []string
	// Roles keeps the declared role names per scope; Dependencies holds
	// their resolved coordinates in the same order.
	Roles        map[buildfile.Scope][]string
	Dependencies map[buildfile.Scope][]catalog.Coordinate
	Projects     map[buildfile.Scope][]buildfile.ModulePath
	SourceSets   map[string]string

	// Publish is set by the publish gate.
	Publish bool
	// Generated marks facade modules produced by codegen.
	Generated bool

	Parent   *Module
	Children []*Module

	settings Settings
}

// Coordinate returns the module's own published coordinate.
func (m *Module) Coordinate() catalog.Coordinate {
	return catalog.Coordinate{
		Alias:    m.Path.String(),
		Group:    m.Group,
		Artifact: m.BaseName,
		Version:  m.Version,
	}
}

// FixturesCoordinate returns the coordinate of the module's test fixtures.
func (m *Module) FixturesCoordinate() catalog.Coordinate {
	c := m.Coordinate()
	c.Artifact += FixturesSuffix
	return c
}

// HasCapability reports whether the module declares the named capability.
func (m *Module) HasCapability(name string) bool {
	return slices.Contains(m.Capabilities, name)
}

// SourceDir returns the directory of the named source set relative to the
// project root. A module without an explicit "main" entry uses its own
// directory as the main source set.
func (m *Module) SourceDir(set string) (string, bool) {
	rel, ok := m.SourceSets[set]
	if !ok {
		if set != buildfile.MainSourceSet {
			return "", false
		}
		rel = "."
	}
	return filepath.Join(filepath.FromSlash(m.Dir), filepath.FromSlash(rel)), true
}

// Effective returns the module's merged inheritable settings.
func (m *Module) Effective() Settings {
	return m.settings
}
