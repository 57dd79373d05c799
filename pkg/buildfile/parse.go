// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/cueutil"
)

// FileName is the descriptor file looked up in the project directory.
const FileName = "sxbuild.cue"

//go:embed buildfile_schema.cue
var schema []byte

// ErrNotFound is returned by Load when the directory has no descriptor.
var ErrNotFound = errors.New("build descriptor not found")

// ErrInvalid is wrapped by schema validation failures.
var ErrInvalid = errors.New("invalid build descriptor")

// Load reads and validates dir/sxbuild.cue.
func Load(dir string) (*Buildfile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}
	path := filepath.Join(abs, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	bf, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	bf.Dir = abs
	return bf, nil
}

// Parse validates data against the #Buildfile schema and checks the
// cross-references CUE cannot express.
func Parse(data []byte, filename string) (*Buildfile, error) {
	res, err := cueutil.ParseAndDecode[Buildfile](schema, data, "#Buildfile", cueutil.WithFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	bf := res.Value
	if bf.Modules == nil {
		bf.Modules = map[ModulePath]Module{}
	}
	if err := bf.validate(); err != nil {
		return nil, err
	}
	return bf, nil
}

func (b *Buildfile) validate() error {
	for _, p := range b.ModulePaths() {
		if err := p.Validate(); err != nil {
			return issue.NewConfigurationError(p.String(), "modules", "%v", err)
		}
		if parent, ok := p.Parent(); ok && !parent.IsRoot() {
			if _, declared := b.Modules[parent]; !declared {
				return issue.NewConfigurationError(p.String(), "modules",
					"parent module %s is not declared", parent)
			}
		}
		mod := b.Modules[p]
		for _, scope := range Scopes {
			for _, ref := range mod.Projects[scope] {
				if _, declared := b.Modules[ref]; !declared {
					return issue.NewConfigurationError(p.String(), "projects."+string(scope),
						"references undeclared module %s", ref)
				}
			}
		}
		if mod.Codegen != nil {
			seen := make(map[string]bool, len(mod.Codegen.Targets))
			for _, t := range mod.Codegen.Targets {
				if seen[t.ID] {
					return issue.NewConfigurationError(p.String(), "codegen.targets",
						"duplicate target id %q", t.ID)
				}
				seen[t.ID] = true
				for _, src := range t.Sources {
					if _, ok := mod.SourceSets[src]; !ok && src != MainSourceSet {
						return issue.NewConfigurationError(p.String(), "codegen.targets."+t.ID,
							"source set %q is not declared in sourceSets", src)
					}
				}
			}
		}
	}
	for _, p := range b.SkipPublish {
		if err := p.Validate(); err != nil {
			return issue.NewConfigurationError(p.String(), "skipPublish", "%v", err)
		}
	}
	return nil
}
