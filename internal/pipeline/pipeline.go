// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

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

// Output locations relative to the owning module directory.
const (
	GeneratedDir = "build/generated"
	DocgenDir    = "build/docgen"
	DocsDir      = "build/antora"
)

// Task id prefixes.
const (
	TaskAPI     = "api"
	TaskCodegen = "codegen"
	TaskDocgen  = "docgen"
	TaskDocs    = "docs"
	TaskPublish = "publish"
)

type (
	// Options selects what a run does.
	Options struct {
		// Parallelism bounds concurrently running tasks.
		Parallelism int
		// History enables up-to-date checks; nil always runs every task.
		History *history.Store
		// Targets restricts codegen to the named targets, given either as a
		// target id or as the generated module path. Empty means all.
		Targets []string
		// Docs adds the documentation task.
		Docs bool
		// Publish adds the publish gate task.
		Publish bool
		// DocsDir overrides the documentation bundle directory.
		DocsDir string
		// Stdout and Stderr receive the documentation renderer's output.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result collects what the tasks of a run produced.
	Result struct {
		Report    *dag.Report
		Generated []codegen.GeneratedModule
		// GenerationErrors batches the members skipped by every target.
		GenerationErrors codegen.GenerationErrors
		Bundle           *docs.SiteBundle
		Decisions        []publish.Decision
	}

	facade struct {
		core   *modgraph.Module
		input  codegen.Core
		decl   buildfile.Target
		target codegen.Target
	}

	run struct {
		project *Project
		opts    Options

		mu  sync.Mutex
		res *Result
	}
)

// Run plans and executes a build of p. Configuration problems found while
// planning abort before any task runs. Task failures, configuration errors
// raised by tasks and the generation error batch are joined into the
// returned error; the Result is returned alongside whenever tasks ran.
func (p *Project) Run(ctx context.Context, opts Options) (*Result, error) {
	r := &run{project: p, opts: opts, res: &Result{}}

	exec := dag.NewExecutor(opts.Parallelism)
	if err := r.plan(exec); err != nil {
		return nil, err
	}
	report, err := exec.Run(ctx)
	if err != nil {
		return nil, err
	}
	r.res.Report = report

	slices.SortFunc(r.res.Generated, func(a, b codegen.GeneratedModule) int {
		return strings.Compare(a.Dir, b.Dir)
	})
	var errs []error
	if err := report.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(r.res.GenerationErrors) > 0 {
		slices.SortFunc(r.res.GenerationErrors, func(a, b *codegen.GenerationError) int {
			if c := strings.Compare(a.Target, b.Target); c != 0 {
				return c
			}
			return strings.Compare(a.Member, b.Member)
		})
		errs = append(errs, r.res.GenerationErrors)
	}
	return r.res, errors.Join(errs...)
}

// Facades returns the codegen targets of p, validated, keyed by the task
// that generates them.
func (p *Project) Facades() (map[string]codegen.Target, error) {
	facades, err := p.facades(nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]codegen.Target, len(facades))
	for _, f := range facades {
		out[codegenTaskID(f)] = f.target
	}
	return out, nil
}

// WatchDirs returns the absolute source directories read by codegen.
func (p *Project) WatchDirs() []string {
	var dirs []string
	for _, m := range p.CodegenModules() {
		for _, dir := range sourceSets(p.Graph, m) {
			if !slices.Contains(dirs, dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	slices.Sort(dirs)
	return dirs
}

func sourceSets(g *modgraph.Graph, m *modgraph.Module) map[string]string {
	names := slices.Collect(maps.Keys(m.SourceSets))
	if !slices.Contains(names, buildfile.MainSourceSet) {
		names = append(names, buildfile.MainSourceSet)
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		dir, _ := m.SourceDir(name)
		out[name] = filepath.Join(g.Root, dir)
	}
	return out
}

func (p *Project) facades(filter []string) ([]facade, error) {
	var out []facade
	matched := make(map[string]bool, len(filter))
	for _, m := range p.CodegenModules() {
		input := codegen.Core{Module: m.Path.String(), SourceSets: sourceSets(p.Graph, m)}
		moduleDir := p.Graph.ModuleDir(m)

		var targets []codegen.Target
		var decls []buildfile.Target
		for _, decl := range m.Codegen.Targets {
			sources := decl.Sources
			if len(sources) == 0 {
				sources = []string{buildfile.MainSourceSet}
			}
			output := decl.Output
			if output == "" {
				output = GeneratedDir + "/" + decl.ID
			}
			dir := filepath.FromSlash(output)
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(moduleDir, dir)
			}
			targets = append(targets, codegen.Target{
				ID:      decl.ID,
				Idiom:   codegen.Idiom(decl.Idiom),
				Sources: sources,
				Package: decl.Package,
				Dir:     dir,
			})
			decls = append(decls, decl)
		}
		// Disjointness holds across every target of the module, filtered or not.
		if err := codegen.CheckTargets(input, targets); err != nil {
			return nil, err
		}

		for i, t := range targets {
			if len(filter) > 0 {
				path := m.Path.Child(t.ID).String()
				switch {
				case slices.Contains(filter, t.ID):
					matched[t.ID] = true
				case slices.Contains(filter, path):
					matched[path] = true
				default:
					continue
				}
			}
			out = append(out, facade{core: m, input: input, decl: decls[i], target: t})
		}
	}
	for _, name := range filter {
		if !matched[name] {
			return nil, issue.NewConfigurationError("", "targets", "no codegen target named %q", name)
		}
	}
	return out, nil
}

func codegenTaskID(f facade) string {
	return TaskCodegen + ":" + f.core.Path.Child(f.target.ID).String()
}

func apiTaskID(m *modgraph.Module) string {
	return TaskAPI + ":" + m.Path.String()
}

func docgenTaskID(m *modgraph.Module) string {
	return TaskDocgen + ":" + m.Path.String()
}

func (r *run) plan(exec *dag.Executor) error {
	g := r.project.Graph
	facades, err := r.project.facades(r.opts.Targets)
	if err != nil {
		return err
	}

	byCore := make(map[buildfile.ModulePath][]facade)
	var cores []*modgraph.Module
	for _, f := range facades {
		if _, ok := byCore[f.core.Path]; !ok {
			cores = append(cores, f.core)
		}
		byCore[f.core.Path] = append(byCore[f.core.Path], f)
	}

	var generated []string
	fragments := make(map[buildfile.ModulePath][]string)
	for _, core := range cores {
		if err := exec.Add(r.apiTask(core, byCore[core.Path])); err != nil {
			return err
		}
		for _, f := range byCore[core.Path] {
			t := r.codegenTask(f)
			if err := exec.Add(t); err != nil {
				return err
			}
			generated = append(generated, t.ID)
		}
		if core.HasTask(capability.TaskDocgen) && len(r.opts.Targets) == 0 {
			dir := filepath.Join(g.ModuleDir(core), filepath.FromSlash(DocgenDir))
			t := r.docgenTask(core, byCore[core.Path][0].input, dir)
			if err := exec.Add(t); err != nil {
				return err
			}
			generated = append(generated, t.ID)
			fragments[core.Path] = append(fragments[core.Path], dir)
		}
	}

	if r.opts.Docs {
		t, err := r.docsTask(generated, fragments)
		if err != nil {
			return err
		}
		if err := exec.Add(t); err != nil {
			return err
		}
	}
	if r.opts.Publish {
		if err := exec.Add(r.publishTask(generated)); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) addGenerated(f facade, gm codegen.GeneratedModule, errs codegen.GenerationErrors) error {
	g := r.project.Graph
	rel, err := filepath.Rel(g.Root, f.target.Dir)
	if err != nil {
		return fmt.Errorf("generated module directory: %w", err)
	}
	if _, err := g.AddGenerated(f.core.Path, f.decl, rel); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.res.Generated = append(r.res.Generated, gm)
	r.res.GenerationErrors = append(r.res.GenerationErrors, errs...)
	return nil
}

func (r *run) upToDate(ctx context.Context, task, fingerprint string) bool {
	if r.opts.History == nil {
		return false
	}
	ok, err := r.opts.History.UpToDate(ctx, task, fingerprint)
	if err != nil {
		slog.Warn("task history unavailable", "task", task, "error", err)
		return false
	}
	return ok
}

func (r *run) record(ctx context.Context, rec history.Record) {
	if r.opts.History == nil {
		return
	}
	if err := r.opts.History.Put(ctx, rec); err != nil {
		slog.Warn("could not record task history", "task", rec.Task, "error", err)
	}
}
