// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/zero88/sxbuild/internal/capability"
	"github.com/zero88/sxbuild/internal/codegen"
	"github.com/zero88/sxbuild/internal/dag"
	"github.com/zero88/sxbuild/internal/docs"
	"github.com/zero88/sxbuild/internal/history"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/internal/publish"
	"github.com/zero88/sxbuild/pkg/buildfile"
)

// fingerprintVersion changes whenever generated output changes for the
// same inputs.
const fingerprintVersion = "1"

func (r *run) apiTask(core *modgraph.Module, facades []facade) dag.Task {
	return dag.Task{
		ID: apiTaskID(core),
		Run: func(ctx context.Context) error {
			for _, f := range facades {
				if err := ctx.Err(); err != nil {
					return err
				}
				api, err := codegen.ScanTarget(f.input, f.target)
				if err != nil {
					return err
				}
				n := 0
				for _, iface := range api.Interfaces {
					n += len(iface.Methods)
				}
				slog.Debug("scanned API surface", "module", core.Path, "target", f.target.ID,
					"interfaces", len(api.Interfaces), "members", n)
			}
			return nil
		},
	}
}

func (r *run) codegenTask(f facade) dag.Task {
	id := codegenTaskID(f)
	return dag.Task{
		ID:      id,
		Deps:    []string{apiTaskID(f.core)},
		Outputs: []string{f.target.Dir},
		Run: func(ctx context.Context) error {
			fp, err := targetFingerprint(f)
			if err != nil {
				return err
			}
			if r.upToDate(ctx, id, fp) {
				gm := codegen.GeneratedModule{Target: f.target.ID, Idiom: f.target.Idiom, Package: f.decl.Package, Dir: f.target.Dir}
				if gm.Package == "" {
					gm.Package = f.target.ID
				}
				if err := r.addGenerated(f, gm, nil); err != nil {
					return err
				}
				return dag.ErrUpToDate
			}

			start := time.Now()
			orch := codegen.Orchestrator{Parallelism: 1}
			out, err := orch.Generate(ctx, f.input, []codegen.Target{f.target})
			var genErrs codegen.GenerationErrors
			if err != nil && !errors.As(err, &genErrs) {
				return err
			}
			if err := r.addGenerated(f, out[0], genErrs); err != nil {
				return err
			}
			// A target with skipped members reruns until its API is fixed, so
			// the batch is reported on every build.
			if len(genErrs) == 0 {
				r.record(ctx, history.Record{
					Task:        id,
					Fingerprint: fp,
					Outputs:     []string{f.target.Dir},
					FinishedAt:  time.Now(),
					Duration:    time.Since(start),
				})
			}
			return nil
		},
	}
}

func (r *run) docgenTask(core *modgraph.Module, input codegen.Core, dir string) dag.Task {
	id := docgenTaskID(core)
	return dag.Task{
		ID:      id,
		Deps:    []string{apiTaskID(core)},
		Outputs: []string{dir},
		Run: func(ctx context.Context) error {
			src := input.SourceSets[buildfile.MainSourceSet]
			h := history.NewHasher()
			h.String("version", fingerprintVersion)
			h.String("output", dir)
			if err := h.Tree(src, "*.go"); err != nil {
				return err
			}
			fp := h.Sum()
			if r.upToDate(ctx, id, fp) {
				return dag.ErrUpToDate
			}

			start := time.Now()
			api, err := codegen.ScanTarget(input, codegen.Target{ID: TaskDocgen, Sources: []string{buildfile.MainSourceSet}})
			if err != nil {
				return err
			}
			names, err := codegen.Docgen(api, dir)
			if err != nil {
				return err
			}
			slog.Info("generated member fragments", "module", core.Path, "dir", dir, "fragments", len(names))
			r.record(ctx, history.Record{
				Task:        id,
				Fingerprint: fp,
				Outputs:     []string{filepath.Join(dir, codegen.IndexFile)},
				FinishedAt:  time.Now(),
				Duration:    time.Since(start),
			})
			return nil
		},
	}
}

func (r *run) docsTask(deps []string, fragments map[buildfile.ModulePath][]string) (dag.Task, error) {
	p := r.project
	g := p.Graph
	m, ok := p.DocsModule()
	if !ok {
		return dag.Task{}, issue.NewConfigurationError("", "capabilities",
			"documentation needs a module with the %s capability", capability.Antora)
	}

	outDir := r.opts.DocsDir
	if outDir == "" {
		outDir = filepath.Join(g.ModuleDir(m), filepath.FromSlash(DocsDir))
	}
	pool, ok := g.ProjectPool[g.BaseProjectName]
	if !ok {
		slog.Warn("no project pool for the base project name; the bundle lists no modules",
			"pool", g.BaseProjectName)
	}

	agg := &docs.Aggregator{
		Root:      g.Root,
		OutDir:    outDir,
		Pool:      pool,
		PoolKey:   g.BaseProjectName,
		Fragments: fragments,
		Stdout:    r.opts.Stdout,
		Stderr:    r.opts.Stderr,
	}
	if m.Docs != nil {
		agg.Include = m.Docs.Include
		agg.Renderer = m.Docs.Renderer
	}

	return dag.Task{
		ID:      TaskDocs,
		Deps:    slices.Clone(deps),
		Outputs: []string{outDir},
		Run: func(ctx context.Context) error {
			bundle, err := agg.Assemble(ctx, g.Modules(), p.Meta())
			if err != nil {
				return err
			}
			r.mu.Lock()
			r.res.Bundle = bundle
			r.mu.Unlock()
			return nil
		},
	}, nil
}

func (r *run) publishTask(deps []string) dag.Task {
	g := r.project.Graph
	return dag.Task{
		ID:   TaskPublish,
		Deps: slices.Clone(deps),
		Run: func(context.Context) error {
			decisions := publish.NewGate(g.SkipPublish).Apply(g.Modules())
			slog.Info("publish gate applied", "modules", len(decisions),
				"publishable", len(publish.Publishable(decisions)))
			r.mu.Lock()
			r.res.Decisions = decisions
			r.mu.Unlock()
			return nil
		},
	}
}

func targetFingerprint(f facade) (string, error) {
	h := history.NewHasher()
	h.String("version", fingerprintVersion)
	h.String("idiom", string(f.target.Idiom))
	h.String("package", f.target.Package)
	h.String("output", f.target.Dir)
	var seen []string
	for _, src := range f.target.Sources {
		dir := f.input.SourceSets[src]
		if slices.Contains(seen, dir) {
			continue
		}
		seen = append(seen, dir)
		if err := h.Tree(dir, "*.go"); err != nil {
			return "", err
		}
	}
	return h.Sum(), nil
}
