// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/zero88/sxbuild/internal/capability"
	"github.com/zero88/sxbuild/internal/dag"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// ErrLayerViolation is wrapped when a module references a higher layer.
var ErrLayerViolation = errors.New("layer violation")

// Graph is the finalized module tree.
type Graph struct {
	Project buildfile.Project
	// Root is the absolute project directory.
	Root string
	// BaseProjectName keys the documentation project pool.
	BaseProjectName string
	ProjectPool     map[string][]buildfile.ModulePath
	SkipPublish     []buildfile.ModulePath

	mu      sync.RWMutex
	modules map[buildfile.ModulePath]*Module
	order   []buildfile.ModulePath
}

// Build finalizes every module of desc. Roles resolve through cat and
// capabilities through reg. The first configuration problem aborts the build.
func Build(desc *buildfile.Buildfile, cat *catalog.Catalog, reg *capability.Registry) (*Graph, error) {
	g := &Graph{
		Project:         desc.Project,
		Root:            desc.Dir,
		BaseProjectName: desc.BaseProjectName(),
		ProjectPool:     desc.ProjectPool,
		SkipPublish:     desc.SkipPublish,
		modules:         make(map[buildfile.ModulePath]*Module, len(desc.Modules)+1),
	}

	paths := desc.ModulePaths()
	if _, ok := desc.Modules[buildfile.RootPath]; !ok {
		paths = append([]buildfile.ModulePath{buildfile.RootPath}, paths...)
	}

	for _, p := range paths {
		m, err := g.newModule(p, desc, cat, reg)
		if err != nil {
			return nil, err
		}
		g.modules[p] = m
	}

	if err := g.checkReferences(); err != nil {
		return nil, err
	}
	order, err := g.sort()
	if err != nil {
		return nil, err
	}
	g.order = order

	slog.Debug("module graph built", "modules", len(g.order))
	return g, nil
}

func (g *Graph) newModule(p buildfile.ModulePath, desc *buildfile.Buildfile, cat *catalog.Catalog, reg *capability.Registry) (*Module, error) {
	decl := desc.Modules[p]

	var parent *Module
	var defaults Settings
	if pp, ok := p.Parent(); ok {
		parent = g.modules[pp]
		defaults = parent.settings
	} else {
		layer := 0
		defaults = Settings{
			Group:      desc.Project.Group,
			Version:    desc.Project.Version,
			Title:      desc.Project.Title,
			Layer:      &layer,
			Publishing: desc.Publishing,
			Features:   desc.Features,
		}
		if defaults.Title == "" {
			defaults.Title = desc.Project.Name
		}
	}
	eff := defaults.Merge(overrides(decl))

	m := &Module{
		Path:         p,
		Name:         p.Name(),
		Group:        eff.Group,
		Version:      eff.Version,
		Title:        eff.Title,
		Dir:          decl.Dir,
		Layer:        *eff.Layer,
		Capabilities: slices.Clone(decl.Capabilities),
		Roles:        make(map[buildfile.Scope][]string),
		Dependencies: make(map[buildfile.Scope][]catalog.Coordinate),
		Projects:     make(map[buildfile.Scope][]buildfile.ModulePath),
		SourceSets:   maps.Clone(decl.SourceSets),
		Parent:       parent,
		settings:     eff,
	}
	if p.IsRoot() {
		m.Name = desc.Project.Name
	}
	if m.Dir == "" {
		m.Dir = p.Dir()
	}
	switch {
	case decl.BaseName != "":
		m.BaseName = decl.BaseName
	case parent == nil:
		m.BaseName = desc.Project.Name
	default:
		m.BaseName = ChildBaseName(parent.BaseName, m.Name)
	}

	m.Settings = capability.Settings{
		Publishing: eff.Publishing,
		Features:   eff.Features,
		Codegen:    decl.Codegen,
		Docs:       decl.Docs,
	}
	if err := reg.Apply(p, decl.Capabilities, &m.Settings); err != nil {
		return nil, err
	}

	for _, scope := range buildfile.Scopes {
		for _, role := range decl.Dependencies[scope] {
			coords, err := cat.Resolve(role)
			if err != nil {
				var ce *issue.ConfigurationError
				if errors.As(err, &ce) {
					ce.Module = p.String()
				}
				return nil, err
			}
			m.Roles[scope] = append(m.Roles[scope], role)
			m.Dependencies[scope] = append(m.Dependencies[scope], coords...)
		}
		if refs := decl.Projects[scope]; len(refs) > 0 {
			m.Projects[scope] = slices.Clone(refs)
		}
	}

	if !m.TestFixtures && (len(decl.Dependencies[buildfile.ScopeTestFixtures]) > 0 || len(decl.Projects[buildfile.ScopeTestFixtures]) > 0) {
		return nil, issue.NewConfigurationError(p.String(), string(buildfile.ScopeTestFixtures),
			"declarations need the %s capability", capability.TestFixtures)
	}

	if m.Codegen != nil {
		for _, t := range m.Codegen.Targets {
			if t.Generator != "" && !slices.Contains(m.Roles[buildfile.ScopeCodeGenerator], t.Generator) {
				return nil, issue.NewConfigurationError(p.String(), "codegen.targets."+t.ID+".generator",
					"role %q is not declared in the %s scope", t.Generator, buildfile.ScopeCodeGenerator)
			}
		}
	}

	if parent != nil {
		parent.Children = append(parent.Children, m)
	}
	return m, nil
}

func (g *Graph) checkReferences() error {
	for _, m := range g.modules {
		for _, scope := range buildfile.Scopes {
			for _, ref := range m.Projects[scope] {
				target, ok := g.modules[ref]
				if !ok {
					return issue.NewConfigurationError(m.Path.String(), "projects."+string(scope),
						"references unknown module %s", ref)
				}
				if target.Layer > m.Layer {
					return issue.NewConfigurationError(m.Path.String(), "projects."+string(scope),
						"layer %d module cannot reference %s at layer %d: %w", m.Layer, ref, target.Layer, ErrLayerViolation)
				}
			}
		}
	}
	return nil
}

func (g *Graph) sort() ([]buildfile.ModulePath, error) {
	paths := slices.Collect(maps.Keys(g.modules))
	sortPaths(paths)

	d := dag.New()
	for _, p := range paths {
		d.AddNode(p.String())
	}
	for _, p := range paths {
		m := g.modules[p]
		for _, scope := range buildfile.Scopes {
			for _, ref := range m.Projects[scope] {
				d.AddEdge(ref.String(), p.String())
			}
		}
	}

	sorted, err := d.TopologicalSort()
	if err != nil {
		var cycle *dag.CycleError
		module := ""
		if errors.As(err, &cycle) && len(cycle.Cycle) > 0 {
			module = cycle.Cycle[0]
		}
		return nil, &issue.ConfigurationError{Module: module, Key: "projects", Cause: err}
	}
	out := make([]buildfile.ModulePath, len(sorted))
	for i, s := range sorted {
		out[i] = buildfile.ModulePath(s)
	}
	return out, nil
}

// AddGenerated registers a facade module produced from core for target as
// the child module core:<target id>. It inherits core's settings and
// exposes core through its api scope.
func (g *Graph) AddGenerated(core buildfile.ModulePath, target buildfile.Target, dir string) (*Module, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parent, ok := g.modules[core]
	if !ok {
		return nil, issue.NewConfigurationError(core.String(), "codegen", "unknown core module")
	}
	p := core.Child(target.ID)
	if existing, ok := g.modules[p]; ok {
		if existing.Generated {
			return existing, nil
		}
		return nil, issue.NewConfigurationError(p.String(), "codegen.targets."+target.ID,
			"a declared module already uses this path")
	}

	eff := parent.settings.Merge(Settings{})
	m := &Module{
		Path:         p,
		Name:         target.ID,
		BaseName:     ChildBaseName(parent.BaseName, target.ID),
		Group:        eff.Group,
		Version:      eff.Version,
		Title:        eff.Title,
		Dir:          filepath.ToSlash(dir),
		Layer:        *eff.Layer,
		Roles:        map[buildfile.Scope][]string{},
		Dependencies: map[buildfile.Scope][]catalog.Coordinate{},
		Projects:     map[buildfile.Scope][]buildfile.ModulePath{buildfile.ScopeAPI: {core}},
		SourceSets:   map[string]string{},
		Generated:    true,
		Parent:       parent,
		settings:     eff,
	}
	m.Settings = capability.Settings{Publishing: eff.Publishing, Features: eff.Features}
	parent.Children = append(parent.Children, m)
	g.modules[p] = m

	// p depends only on core, which is already ordered.
	g.order = append(g.order, p)
	return m, nil
}

// Module returns the module at p.
func (g *Graph) Module(p buildfile.ModulePath) (*Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.modules[p]
	return m, ok
}

// Modules returns every module in dependency order.
func (g *Graph) Modules() []*Module {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Module, 0, len(g.order))
	for _, p := range g.order {
		out = append(out, g.modules[p])
	}
	return out
}

// Paths returns every module path in dependency order.
func (g *Graph) Paths() []buildfile.ModulePath {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// ModuleDir returns the absolute directory of m.
func (g *Graph) ModuleDir(m *Module) string {
	return filepath.Join(g.Root, filepath.FromSlash(m.Dir))
}

func sortPaths(paths []buildfile.ModulePath) {
	slices.SortFunc(paths, func(a, b buildfile.ModulePath) int {
		if d := a.Depth() - b.Depth(); d != 0 {
			return d
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}
