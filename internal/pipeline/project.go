// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"path/filepath"

	"github.com/zero88/sxbuild/internal/capability"
	"github.com/zero88/sxbuild/internal/docs"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// Project is a loaded project tree: its descriptor, version catalog and
// finalized module graph.
type Project struct {
	Descriptor *buildfile.Buildfile
	Catalog    *catalog.Catalog
	Graph      *modgraph.Graph
}

// Load reads dir/sxbuild.cue and the catalog it names, then builds the
// module graph with the capabilities of reg. A nil reg means
// capability.Default().
func Load(dir string, reg *capability.Registry) (*Project, error) {
	desc, err := buildfile.Load(dir)
	if err != nil {
		return nil, err
	}
	cat, err := LoadCatalog(desc)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = capability.Default()
	}
	g, err := modgraph.Build(desc, cat, reg)
	if err != nil {
		return nil, err
	}
	return &Project{Descriptor: desc, Catalog: cat, Graph: g}, nil
}

// LoadCatalog loads the version catalog desc names, relative to the
// descriptor's directory.
func LoadCatalog(desc *buildfile.Buildfile) (*catalog.Catalog, error) {
	path := desc.Catalog
	if !filepath.IsAbs(path) {
		path = filepath.Join(desc.Dir, filepath.FromSlash(path))
	}
	return catalog.Load(path)
}

// Meta returns the metadata substituted into documentation pages.
func (p *Project) Meta() docs.Meta {
	return docs.Meta{
		Group:                 p.Graph.Project.Group,
		ProjectName:           p.Graph.BaseProjectName,
		Version:               p.Graph.Project.Version,
		CoreDependencyVersion: p.Catalog.CoreVersion(),
		Title:                 p.Graph.Project.Title,
	}
}

// CodegenModules returns the modules that generate facades, in dependency
// order.
func (p *Project) CodegenModules() []*modgraph.Module {
	var out []*modgraph.Module
	for _, m := range p.Graph.Modules() {
		if m.HasTask(capability.TaskCodegen) && m.Codegen != nil {
			out = append(out, m)
		}
	}
	return out
}

// DocsModule returns the first module carrying the documentation task.
func (p *Project) DocsModule() (*modgraph.Module, bool) {
	for _, m := range p.Graph.Modules() {
		if m.HasTask(capability.TaskDocs) {
			return m, true
		}
	}
	return nil, false
}
