// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	yaml "go.yaml.in/yaml/v3"

	"github.com/zero88/sxbuild/internal/capability"
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/internal/testutil"
	"github.com/zero88/sxbuild/pkg/buildfile"
)

const coreGo = `// Package core schedules jobs.
package core

// Scheduler runs jobs on triggers.
type Scheduler struct {
	name string
}

// New creates a scheduler.
func New(name string) *Scheduler {
	return &Scheduler{name: name}
}

// Start begins scheduling.
func (s *Scheduler) Start(job string) error {
	return nil
}
`

var testMeta = Meta{
	Group:                 "io.github.zero88",
	ProjectName:           "schedulerx",
	Version:               "2.0.0",
	CoreDependencyVersion: "4.4.4",
	Title:                 "Scheduler.x",
}

func testTree(t *testing.T) (string, []*modgraph.Module) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"go.mod":                                 "module example.com/scheduler\n\ngo 1.22\n",
		"core/scheduler.go":                      coreGo,
		"core/scheduler_test.go":                 "package core\n\nfunc helperForTests() {}\n",
		"core/src/main/asciidoc/intro.adoc":      "Version {project-version} of {project-name} ({project-group})\n",
		"core/src/main/asciidoc/notes.txt":       "not a fragment\n",
		"core/src/main/asciidoc/nested/x.adoc":   "below the include depth\n",
		"core/build/docgen/scheduler-start.adoc": "=== Scheduler.Start\n",
		"core/build/docgen/members.json":         "[]\n",
		"docs/pages/guide/usage.adoc":            "Use {core-dependency-version}\n",
		"ratelimit/ratelimit.go":                 "package ratelimit\n\n// Limiter limits.\ntype Limiter struct{}\n",
	})

	modules := []*modgraph.Module{
		{Path: ":core", BaseName: "schedulerx-core", Title: "Scheduler.x", Version: "2.0.0", Dir: "core"},
		{Path: ":core:rx", BaseName: "schedulerx-core-rx", Version: "2.0.0", Dir: "core/build/generated/rx", Generated: true},
		{
			Path: ":docs", BaseName: "schedulerx-docs", Version: "2.0.0", Dir: "docs",
			Settings: capability.Settings{Docs: &buildfile.Docs{Include: []string{"**/*.adoc"}, Narrative: "pages"}},
		},
		{Path: ":ratelimit", BaseName: "schedulerx-ratelimit", Version: "2.0.0", Dir: "ratelimit"},
	}
	return root, modules
}

func newAggregator(root string) *Aggregator {
	return &Aggregator{
		Root:      root,
		OutDir:    filepath.Join(root, "docs", "build", "antora"),
		Pool:      []buildfile.ModulePath{":core", ":core:rx", ":docs"},
		PoolKey:   "schedulerx",
		Fragments: map[buildfile.ModulePath][]string{":core": {"core/build/docgen"}},
	}
}

func TestSelectModules(t *testing.T) {
	t.Parallel()
	_, modules := testTree(t)

	got, err := SelectModules([]buildfile.ModulePath{":docs", ":core", ":core:rx", ":core"}, "schedulerx", modules)
	if err != nil {
		t.Fatalf("SelectModules() error = %v", err)
	}
	var paths []buildfile.ModulePath
	for _, m := range got {
		paths = append(paths, m.Path)
	}
	if want := []buildfile.ModulePath{":docs", ":core", ":core:rx"}; !slices.Equal(paths, want) {
		t.Errorf("SelectModules() = %v, want %v", paths, want)
	}

	_, err = SelectModules([]buildfile.ModulePath{":core", ":manager"}, "schedulerx", modules)
	var ce *issue.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("SelectModules() error = %v, want ConfigurationError", err)
	}
	if ce.Module != ":manager" || ce.Key != "projectPool.schedulerx" {
		t.Errorf("error names %s / %s", ce.Module, ce.Key)
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()
	root, modules := testTree(t)
	a := newAggregator(root)

	b, err := a.Assemble(context.Background(), modules, testMeta)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(b.Modules) != 3 {
		t.Fatalf("modules = %d, want 3", len(b.Modules))
	}
	for _, md := range b.Modules {
		if md.Path == ":ratelimit" {
			t.Error("module outside the pool was assembled")
		}
	}

	core := b.Modules[0]
	if core.Reference != "reference/schedulerx-core.md" || core.ReferenceHTML != "reference/schedulerx-core.html" {
		t.Errorf("core reference = %q, %q", core.Reference, core.ReferenceHTML)
	}
	wantPartials := []string{"partials/schedulerx-core/intro.adoc", "partials/schedulerx-core/scheduler-start.adoc"}
	if !slices.Equal(core.Partials, wantPartials) {
		t.Errorf("core partials = %v, want %v", core.Partials, wantPartials)
	}
	if rx := b.Modules[1]; rx.Reference != "" || len(rx.Partials) != 0 {
		t.Errorf("rx docs = %+v", rx)
	}
	if got := b.Modules[2].Partials; !slices.Equal(got, []string{"partials/schedulerx-docs/guide/usage.adoc"}) {
		t.Errorf("docs partials = %v", got)
	}

	read := func(rel string) string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(b.Dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	if got := read("partials/schedulerx-core/intro.adoc"); got != "Version 2.0.0 of schedulerx (io.github.zero88)\n" {
		t.Errorf("intro.adoc = %q", got)
	}
	if got := read("partials/schedulerx-docs/guide/usage.adoc"); got != "Use 4.4.4\n" {
		t.Errorf("usage.adoc = %q", got)
	}
	for _, absent := range []string{"partials/schedulerx-core/members.json", "partials/schedulerx-core/notes.txt", "reference/schedulerx-ratelimit.md"} {
		if _, err := os.Stat(filepath.Join(b.Dir, absent)); !os.IsNotExist(err) {
			t.Errorf("%s should not be in the bundle", absent)
		}
	}

	ref := read(core.Reference)
	for _, s := range []string{
		"# schedulerx-core 2.0.0 API",
		`import "example.com/scheduler/core"`,
		"Package core schedules jobs.",
		"## type Scheduler",
		"func New(name string) *Scheduler",
		"func (s *Scheduler) Start(job string) error",
		"Start begins scheduling.",
	} {
		if !strings.Contains(ref, s) {
			t.Errorf("reference missing %q:\n%s", s, ref)
		}
	}
	if strings.Contains(ref, "helperForTests") {
		t.Error("reference includes test files")
	}
	if html := read(core.ReferenceHTML); !strings.Contains(html, "<h1>schedulerx-core 2.0.0 API</h1>") {
		t.Errorf("html = %s", html)
	}

	index := read(b.Index)
	for _, s := range []string{"# schedulerx 2.0.0", "Scheduler.x 2.0.0 API", "`io.github.zero88`", "core dependency 4.4.4", "**schedulerx-core**"} {
		if !strings.Contains(index, s) {
			t.Errorf("index missing %q:\n%s", s, index)
		}
	}
	if strings.Contains(index, "ratelimit") {
		t.Error("index references a module outside the pool")
	}

	var desc struct {
		Name     string   `yaml:"name"`
		Version  string   `yaml:"version"`
		Nav      []string `yaml:"nav"`
		Asciidoc struct {
			Attributes map[string]string `yaml:"attributes"`
		} `yaml:"asciidoc"`
	}
	if err := yaml.Unmarshal([]byte(read(b.Descriptor)), &desc); err != nil {
		t.Fatal(err)
	}
	if desc.Name != "schedulerx" || desc.Version != "2.0.0" {
		t.Errorf("descriptor = %+v", desc)
	}
	if got := desc.Asciidoc.Attributes["javadoc-title"]; got != "Scheduler.x 2.0.0 API" {
		t.Errorf("javadoc-title = %q", got)
	}
	if got := desc.Asciidoc.Attributes["core-dependency-version"]; got != "4.4.4" {
		t.Errorf("core-dependency-version = %q", got)
	}
	if !slices.Equal(desc.Nav, []string{"reference/schedulerx-core.md"}) {
		t.Errorf("nav = %v", desc.Nav)
	}

	again, err := a.Assemble(context.Background(), modules, testMeta)
	if err != nil {
		t.Fatal(err)
	}
	if again.Written != 0 {
		t.Errorf("second run wrote %d files", again.Written)
	}
}

func TestAssemble_Renderer(t *testing.T) {
	t.Parallel()
	root, modules := testTree(t)

	a := newAggregator(root)
	a.Renderer = `echo "$IN" > "$OUT/in.txt"`
	if _, err := a.Assemble(context.Background(), modules, testMeta); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(a.OutDir, SiteDir, "in.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != a.OutDir {
		t.Errorf("IN = %q, want %q", data, a.OutDir)
	}

	a.Renderer = "exit 3"
	_, err = a.Assemble(context.Background(), modules, testMeta)
	if err == nil || !strings.Contains(err.Error(), "status 3") {
		t.Errorf("Assemble() error = %v, want exit status 3", err)
	}
}

func TestAssemble_MissingPoolModule(t *testing.T) {
	t.Parallel()
	root, modules := testTree(t)
	a := newAggregator(root)
	a.Pool = append(a.Pool, ":manager")

	_, err := a.Assemble(context.Background(), modules, testMeta)
	if !issue.IsConfiguration(err) {
		t.Fatalf("Assemble() error = %v, want configuration error", err)
	}
	if _, err := os.Stat(a.OutDir); !os.IsNotExist(err) {
		t.Error("nothing should be written on a configuration error")
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()
	root, modules := testTree(t)
	b, err := newAggregator(root).Assemble(context.Background(), modules, testMeta)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Preview(b, "notty", 0)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !strings.Contains(out, "schedulerx-core") {
		t.Errorf("Preview() = %q", out)
	}
}

func TestMetaReplacer(t *testing.T) {
	t.Parallel()
	got := testMeta.Replacer().Replace("{project-name}:{project-version} {unknown}")
	if got != "schedulerx:2.0.0 {unknown}" {
		t.Errorf("Replace() = %q", got)
	}
	if (Meta{ProjectName: "x", Version: "1"}).APITitle() != "x 1 API" {
		t.Error("APITitle should fall back to the project name")
	}
}
