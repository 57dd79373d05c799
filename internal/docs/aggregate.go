// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"text/template"

	"github.com/zero88/sxbuild/internal/codegen"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/fspath"
)

// Bundle layout, relative to the bundle directory.
const (
	IndexFile    = "index.md"
	ReferenceDir = "reference"
	PartialsDir  = "partials"
	SiteDir      = "site"
)

type (
	// Aggregate is the documentation collected for the pooled modules.
	Aggregate struct {
		Meta    Meta
		Modules []ModuleDocs
	}

	// ModuleDocs lists the bundle files produced for one module. Paths are
	// slash-separated and relative to the bundle directory.
	ModuleDocs struct {
		Path          buildfile.ModulePath
		BaseName      string
		Title         string
		Reference     string
		ReferenceHTML string
		Partials      []string
	}

	// SiteBundle is the assembled documentation tree.
	SiteBundle struct {
		Aggregate
		Dir        string
		Index      string
		Descriptor string
		// Written counts files whose content changed.
		Written int
	}

	// Aggregator assembles a SiteBundle into OutDir.
	Aggregator struct {
		// Root is the project directory module directories are relative to.
		Root   string
		OutDir string
		// Pool lists the modules to document; PoolKey names the pool in errors.
		Pool    []buildfile.ModulePath
		PoolKey string
		// Include filters fragment files for modules without their own docs
		// settings; empty means the default pattern.
		Include []string
		// Fragments maps a module to extra fragment directories, such as
		// per-member docgen output.
		Fragments map[buildfile.ModulePath][]string
		// Renderer is an optional shell command run after assembly.
		Renderer string
		Stdout   io.Writer
		Stderr   io.Writer
	}
)

var indexTemplate = template.Must(template.New("index").Parse(`# {project-name} {project-version}

{{.Title}}

Group ` + "`{project-group}`" + `, built against core dependency {core-dependency-version}.

## Modules
{{range .Modules}}
- **{{.BaseName}}**{{if .Reference}}: [API reference]({{.Reference}}){{end}}{{if .Partials}}, {{len .Partials}} fragment(s){{end}}
{{- end}}
`))

// Assemble collects the reference docs and fragments of the pooled modules
// among modules, substitutes meta into them and writes the bundle.
func (a *Aggregator) Assemble(ctx context.Context, modules []*modgraph.Module, meta Meta) (*SiteBundle, error) {
	selected, err := SelectModules(a.Pool, a.PoolKey, modules)
	if err != nil {
		return nil, err
	}

	b := &SiteBundle{Aggregate: Aggregate{Meta: meta}, Dir: a.OutDir}
	repl := meta.Replacer()
	for _, m := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		md, err := a.module(b, m)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Path, err)
		}
		b.Modules = append(b.Modules, md)
	}

	var index bytes.Buffer
	if err := indexTemplate.Execute(&index, struct {
		Title   string
		Modules []ModuleDocs
	}{meta.APITitle(), b.Modules}); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	b.Index = IndexFile
	if err := b.write(IndexFile, []byte(repl.Replace(index.String()))); err != nil {
		return nil, err
	}

	var nav []string
	for _, md := range b.Modules {
		if md.Reference != "" {
			nav = append(nav, md.Reference)
		}
	}
	desc, err := descriptor(meta, nav)
	if err != nil {
		return nil, err
	}
	b.Descriptor = DescriptorFile
	if err := b.write(DescriptorFile, desc); err != nil {
		return nil, err
	}

	if a.Renderer != "" {
		stdout, stderr := a.Stdout, a.Stderr
		if stdout == nil {
			stdout = io.Discard
		}
		if stderr == nil {
			stderr = io.Discard
		}
		if err := runRenderer(ctx, a.Renderer, a.OutDir, filepath.Join(a.OutDir, SiteDir), stdout, stderr); err != nil {
			return nil, err
		}
	}

	slog.Info("assembled documentation", "dir", a.OutDir, "modules", len(b.Modules), "written", b.Written)
	return b, nil
}

func (a *Aggregator) module(b *SiteBundle, m *modgraph.Module) (ModuleDocs, error) {
	md := ModuleDocs{Path: m.Path, BaseName: m.BaseName, Title: m.Title}
	repl := b.Meta.Replacer()

	if dir, ok := m.SourceDir(buildfile.MainSourceSet); ok {
		dir = a.abs(dir)
		importPath, err := codegen.ImportPath(dir)
		if err != nil {
			slog.Debug("no import path for reference docs", "module", m.Path, "error", err)
		}
		ref, found, err := Reference(dir, importPath, m.BaseName+" "+m.Version+" API")
		if err != nil {
			return md, err
		}
		if found {
			html, err := RenderHTML(ref)
			if err != nil {
				return md, err
			}
			md.Reference = path.Join(ReferenceDir, m.BaseName+".md")
			md.ReferenceHTML = path.Join(ReferenceDir, m.BaseName+".html")
			if err := b.write(md.Reference, ref); err != nil {
				return md, err
			}
			if err := b.write(md.ReferenceHTML, html); err != nil {
				return md, err
			}
		}
	}

	include, narrative := a.Include, buildfile.DefaultNarrativeDir
	if m.Docs != nil {
		if len(m.Docs.Include) > 0 {
			include = m.Docs.Include
		}
		if m.Docs.Narrative != "" {
			narrative = m.Docs.Narrative
		}
	}
	if len(include) == 0 {
		include = []string{buildfile.DefaultDocsInclude}
	}

	sources := []string{filepath.Join(a.abs(m.Dir), filepath.FromSlash(narrative))}
	for _, dir := range a.Fragments[m.Path] {
		sources = append(sources, a.abs(dir))
	}
	dst := path.Join(PartialsDir, m.BaseName)
	for _, src := range sources {
		copied, written, err := copyPartials(src, filepath.Join(b.Dir, filepath.FromSlash(dst)), include, repl)
		if err != nil {
			return md, err
		}
		b.Written += written
		for _, rel := range copied {
			md.Partials = append(md.Partials, path.Join(dst, rel))
		}
	}
	return md, nil
}

func (a *Aggregator) abs(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(a.Root, dir)
}

func (b *SiteBundle) write(rel string, data []byte) error {
	changed, err := fspath.WriteIfChanged(filepath.Join(b.Dir, filepath.FromSlash(rel)), data, 0o644)
	if err != nil {
		return err
	}
	if changed {
		b.Written++
	}
	return nil
}
