// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/buildfile"
)

// Built-in capability names.
const (
	OSS          = "oss"
	Codegen      = "codegen"
	Docgen       = "docgen"
	Antora       = "antora"
	TestFixtures = "test-fixtures"
)

// Task names contributed by capabilities.
const (
	TaskPublication = "publication"
	TaskCodegen     = "codegen"
	TaskDocgen      = "docgen"
	TaskDocs        = "docs"
)

// DefaultSlowThreshold is the test logger threshold in milliseconds applied
// by the oss capability when the descriptor does not set one.
const DefaultSlowThreshold = 7000

type (
	// Settings is the part of a module a capability may change.
	Settings struct {
		Publishing   buildfile.Publishing
		Features     buildfile.Features
		Codegen      *buildfile.Codegen
		Docs         *buildfile.Docs
		Tasks        []string
		TestFixtures bool
	}

	// ApplyFunc configures s for the module at path.
	ApplyFunc func(path buildfile.ModulePath, s *Settings) error

	// Registry maps capability names to apply functions. It is safe for
	// concurrent use.
	Registry struct {
		mu      sync.RWMutex
		entries map[string]ApplyFunc
	}
)

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]ApplyFunc)}
}

// Default returns a registry with the built-in capabilities.
func Default() *Registry {
	r := New()
	r.mustRegister(OSS, applyOSS)
	r.mustRegister(Codegen, applyCodegen)
	r.mustRegister(Docgen, applyDocgen)
	r.mustRegister(Antora, applyAntora)
	r.mustRegister(TestFixtures, applyTestFixtures)
	return r
}

// Register adds fn under name. Registering a name twice is an error.
func (r *Registry) Register(name string, fn ApplyFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("capability: name and apply function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("capability %q already registered", name)
	}
	r.entries[name] = fn
	return nil
}

func (r *Registry) mustRegister(name string, fn ApplyFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Apply runs the named capabilities against s in the given order.
func (r *Registry) Apply(path buildfile.ModulePath, names []string, s *Settings) error {
	for _, name := range names {
		r.mu.RLock()
		fn, ok := r.entries[name]
		r.mu.RUnlock()
		if !ok {
			return issue.NewConfigurationError(path.String(), "capabilities",
				"unknown capability %q (known: %v)", name, r.Names())
		}
		if err := fn(path, s); err != nil {
			return err
		}
	}
	return nil
}

// AddTask records task once.
func (s *Settings) AddTask(task string) {
	if !slices.Contains(s.Tasks, task) {
		s.Tasks = append(s.Tasks, task)
	}
}

// HasTask reports whether a capability contributed task.
func (s *Settings) HasTask(task string) bool {
	return slices.Contains(s.Tasks, task)
}

func applyOSS(path buildfile.ModulePath, s *Settings) error {
	if s.Publishing.Homepage == "" {
		return issue.NewConfigurationError(path.String(), "publishing.homepage",
			"the %s capability needs a homepage", OSS)
	}
	enabled := true
	if s.Features.Zero88 == nil {
		s.Features.Zero88 = &enabled
	}
	if s.Features.GitHub == nil {
		s.Features.GitHub = &enabled
	}
	if s.Features.TestLogger == nil {
		s.Features.TestLogger = &buildfile.TestLogger{}
	}
	if s.Features.TestLogger.SlowThreshold == 0 {
		s.Features.TestLogger.SlowThreshold = DefaultSlowThreshold
	}
	s.AddTask(TaskPublication)
	return nil
}

func applyCodegen(path buildfile.ModulePath, s *Settings) error {
	if s.Codegen == nil || len(s.Codegen.Targets) == 0 {
		return issue.NewConfigurationError(path.String(), "codegen",
			"the %s capability needs at least one target", Codegen)
	}
	s.AddTask(TaskCodegen)
	return nil
}

func applyDocgen(path buildfile.ModulePath, s *Settings) error {
	if !s.HasTask(TaskCodegen) {
		return issue.NewConfigurationError(path.String(), "capabilities",
			"%s must follow the %s capability", Docgen, Codegen)
	}
	s.AddTask(TaskDocgen)
	return nil
}

func applyAntora(_ buildfile.ModulePath, s *Settings) error {
	if s.Docs == nil {
		s.Docs = &buildfile.Docs{}
	}
	if len(s.Docs.Include) == 0 {
		s.Docs.Include = []string{buildfile.DefaultDocsInclude}
	}
	if s.Docs.Narrative == "" {
		s.Docs.Narrative = buildfile.DefaultNarrativeDir
	}
	s.AddTask(TaskDocs)
	return nil
}

func applyTestFixtures(_ buildfile.ModulePath, s *Settings) error {
	s.TestFixtures = true
	return nil
}
