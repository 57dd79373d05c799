// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	"slices"
	"strings"
)

// Scope names a dependency configuration.
type Scope string

const (
	ScopeAPI            Scope = "api"
	ScopeImplementation Scope = "implementation"
	ScopeCompileOnly    Scope = "compileOnly"
	ScopeTest           Scope = "test"
	ScopeTestFixtures   Scope = "testFixtures"
	ScopeCodeGenerator  Scope = "codeGenerator"
)

// MainSourceSet is always defined; it defaults to the module directory.
const MainSourceSet = "main"

// Docs defaults applied when the descriptor leaves them unset.
const (
	DefaultDocsInclude  = "*.adoc"
	DefaultNarrativeDir = "src/main/asciidoc"
)

// Scopes lists every scope in declaration order.
var Scopes = []Scope{
	ScopeAPI,
	ScopeImplementation,
	ScopeCompileOnly,
	ScopeTest,
	ScopeTestFixtures,
	ScopeCodeGenerator,
}

type (
	// Buildfile is the decoded sxbuild.cue.
	Buildfile struct {
		Project     Project                 `json:"project"`
		Catalog     string                  `json:"catalog"`
		Publishing  Publishing              `json:"publishing,omitempty"`
		Features    Features                `json:"features,omitempty"`
		SkipPublish []ModulePath            `json:"skipPublish"`
		ProjectPool map[string][]ModulePath `json:"projectPool"`
		Modules     map[ModulePath]Module   `json:"modules"`

		// Dir is the directory holding sxbuild.cue, set by Load.
		Dir string `json:"-"`
	}

	// Project is the project-wide metadata.
	Project struct {
		Name    string `json:"name"`
		Group   string `json:"group"`
		Version string `json:"version"`
		Title   string `json:"title,omitempty"`
	}

	// Publishing is the metadata attached to published artifacts.
	Publishing struct {
		Homepage string   `json:"homepage,omitempty"`
		License  *License `json:"license,omitempty"`
		Scm      *Scm     `json:"scm,omitempty"`
	}

	// License names the artifact license.
	License struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	// Scm holds source-control URLs.
	Scm struct {
		URL                 string `json:"url"`
		Connection          string `json:"connection,omitempty"`
		DeveloperConnection string `json:"developerConnection,omitempty"`
	}

	// Features toggles organisation-wide conventions.
	Features struct {
		Zero88     *bool       `json:"zero88,omitempty"`
		GitHub     *bool       `json:"github,omitempty"`
		TestLogger *TestLogger `json:"testLogger,omitempty"`
	}

	// TestLogger configures test reporting thresholds in milliseconds.
	TestLogger struct {
		SlowThreshold int `json:"slowThreshold,omitempty"`
	}

	// Module is one entry of the modules map. Pointer and empty fields mean
	// "inherit from the parent".
	Module struct {
		BaseName     string                 `json:"baseName,omitempty"`
		Title        string                 `json:"title,omitempty"`
		Dir          string                 `json:"dir,omitempty"`
		Version      string                 `json:"version,omitempty"`
		Group        string                 `json:"group,omitempty"`
		Layer        *int                   `json:"layer,omitempty"`
		Capabilities []string               `json:"capabilities"`
		Dependencies map[Scope][]string     `json:"dependencies"`
		Projects     map[Scope][]ModulePath `json:"projects"`
		SourceSets   map[string]string      `json:"sourceSets"`
		Codegen      *Codegen               `json:"codegen,omitempty"`
		Docs         *Docs                  `json:"docs,omitempty"`
		Publishing   *Publishing            `json:"publishing,omitempty"`
		Features     *Features              `json:"features,omitempty"`
	}

	// Codegen lists the facade targets generated from a module.
	Codegen struct {
		Targets []Target `json:"targets"`
	}

	// Target declares one generated facade.
	Target struct {
		ID        string   `json:"id"`
		Idiom     string   `json:"idiom"`
		Generator string   `json:"generator,omitempty"`
		Sources   []string `json:"sources"`
		Package   string   `json:"package,omitempty"`
		Output    string   `json:"output,omitempty"`
	}

	// Docs configures documentation collection for a module.
	Docs struct {
		Include   []string `json:"include"`
		Narrative string   `json:"narrative"`
		Renderer  string   `json:"renderer,omitempty"`
	}
)

// HasCapability reports whether the module lists the named capability.
func (m Module) HasCapability(name string) bool {
	return slices.Contains(m.Capabilities, name)
}

// ModulePaths returns every declared module path sorted by depth then name,
// so parents always precede their children.
func (b *Buildfile) ModulePaths() []ModulePath {
	paths := make([]ModulePath, 0, len(b.Modules))
	for p := range b.Modules {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, c ModulePath) int {
		if d := a.Depth() - c.Depth(); d != 0 {
			return d
		}
		return strings.Compare(string(a), string(c))
	})
	return paths
}

// BaseProjectName returns the base name used as the documentation pool key:
// the root module's baseName when set, otherwise the project name.
func (b *Buildfile) BaseProjectName() string {
	if root, ok := b.Modules[RootPath]; ok && root.BaseName != "" {
		return root.BaseName
	}
	return b.Project.Name
}
