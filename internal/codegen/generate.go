// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/fspath"

	"golang.org/x/sync/errgroup"
)

type (
	// Core is the read-only input of a generation run.
	Core struct {
		// Module is the core module path, for error reporting.
		Module string
		// SourceSets maps source set names to absolute directories.
		SourceSets map[string]string
	}

	// Target is a facade to generate.
	Target struct {
		ID      string
		Idiom   Idiom
		Sources []string
		// Package is the generated package name; it defaults to ID.
		Package string
		// Dir is the absolute output directory.
		Dir string
	}

	// GeneratedModule describes the output of one target.
	GeneratedModule struct {
		Target     string
		Idiom      Idiom
		Package    string
		ImportPath string
		Dir        string
		Files      []string
		// Written counts files whose content changed.
		Written int
		// Members counts the API members rendered.
		Members int
	}

	// Orchestrator generates facade targets concurrently.
	Orchestrator struct {
		// Parallelism bounds concurrent targets; values below 1 mean one per target.
		Parallelism int
	}
)

// Generate renders every target from core. Configuration problems abort
// before anything is written. Unrepresentable members are skipped; they
// are returned together as GenerationErrors after all targets finish,
// alongside the generated modules.
func (o *Orchestrator) Generate(ctx context.Context, core Core, targets []Target) ([]GeneratedModule, error) {
	if err := CheckTargets(core, targets); err != nil {
		return nil, err
	}

	out := make([]GeneratedModule, len(targets))
	var (
		mu   sync.Mutex
		errs GenerationErrors
	)

	g, ctx := errgroup.WithContext(ctx)
	if o.Parallelism > 0 {
		g.SetLimit(o.Parallelism)
	}
	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gm, targetErrs, err := generateTarget(core, t)
			if err != nil {
				return fmt.Errorf("target %s: %w", t.ID, err)
			}
			out[i] = gm
			mu.Lock()
			errs = append(errs, targetErrs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		slices.SortFunc(errs, func(a, b *GenerationError) int {
			if c := strings.Compare(a.Target, b.Target); c != 0 {
				return c
			}
			return strings.Compare(a.Member, b.Member)
		})
		return out, errs
	}
	return out, nil
}

// CheckTargets reports the first configuration problem of targets: an
// unknown idiom or source set, or an output directory overlapping a source
// set or another output.
func CheckTargets(core Core, targets []Target) error {
	for i, t := range targets {
		if _, err := ParseIdiom(string(t.Idiom)); err != nil {
			return issue.NewConfigurationError(core.Module, "codegen.targets."+t.ID, "%v", err)
		}
		if t.Dir == "" {
			return issue.NewConfigurationError(core.Module, "codegen.targets."+t.ID, "no output directory")
		}
		for _, src := range t.Sources {
			dir, ok := core.SourceSets[src]
			if !ok {
				return issue.NewConfigurationError(core.Module, "codegen.targets."+t.ID,
					"unknown source set %q", src)
			}
			// Outputs below a source directory are fine: scanning is not recursive.
			if filepath.Clean(dir) == filepath.Clean(t.Dir) || fspath.Within(t.Dir, dir) {
				return issue.NewConfigurationError(core.Module, "codegen.targets."+t.ID,
					"output %s overlaps source set %q", t.Dir, src)
			}
		}
		for _, other := range targets[:i] {
			if fspath.Overlaps(other.Dir, t.Dir) {
				return issue.NewConfigurationError(core.Module, "codegen.targets."+t.ID,
					"output %s overlaps the output of target %s", t.Dir, other.ID)
			}
		}
	}
	return nil
}

func (t Target) packageName() string {
	if t.Package != "" {
		return t.Package
	}
	return t.ID
}

// ScanTarget scans the source sets t reads.
func ScanTarget(core Core, t Target) (*API, error) {
	var dirs []string
	for _, src := range t.Sources {
		if dir := core.SourceSets[src]; !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("target %s has no sources", t.ID)
	}
	importPath, err := ImportPath(dirs[0])
	if err != nil {
		return nil, err
	}
	return Scan(importPath, dirs...)
}

func generateTarget(core Core, t Target) (GeneratedModule, []*GenerationError, error) {
	api, err := ScanTarget(core, t)
	if err != nil {
		return GeneratedModule{}, nil, err
	}

	gm := GeneratedModule{Target: t.ID, Idiom: t.Idiom, Package: t.packageName(), Dir: t.Dir}
	if gm.ImportPath, err = ImportPath(t.Dir); err != nil {
		// Outputs outside any Go module are still usable as plain sources.
		slog.Debug("generated package has no import path", "target", t.ID, "error", err)
	}

	r := newRenderer(t.ID, t.Idiom, api, gm.Package)
	facade, err := r.facade()
	if err != nil {
		return gm, nil, err
	}
	support, err := r.support()
	if err != nil {
		return gm, nil, err
	}

	files := map[string][]byte{gm.Package + ".go": facade, "support.go": support}
	for _, name := range slices.Sorted(maps.Keys(files)) {
		written, err := fspath.WriteIfChanged(filepath.Join(t.Dir, name), files[name], 0o644)
		if err != nil {
			return gm, nil, err
		}
		if written {
			gm.Written++
		}
		gm.Files = append(gm.Files, name)
	}
	if err := removeStale(t.Dir, gm.Files); err != nil {
		return gm, nil, err
	}

	gm.Members = r.rendered
	slog.Info("generated facade", "target", t.ID, "idiom", t.Idiom, "dir", t.Dir, "written", gm.Written)
	return gm, r.errs, nil
}

// removeStale deletes generated Go files in dir that are not in keep.
func removeStale(dir string, keep []string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") || slices.Contains(keep, e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		generated, err := isGenerated(path)
		if err != nil {
			return err
		}
		if generated {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove stale %s: %w", path, err)
			}
		}
	}
	return nil
}

func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.HasPrefix(line, GeneratedHeader), nil
}
