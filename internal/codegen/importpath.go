// SPDX-License-Identifier: MPL-2.0

package codegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ErrNoGoModule is returned when no go.mod encloses a directory.
var ErrNoGoModule = errors.New("no enclosing go.mod")

// ImportPath returns the import path of the package in dir, derived from
// the nearest enclosing go.mod.
func ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for root := abs; ; {
		gomod := filepath.Join(root, "go.mod")
		data, err := os.ReadFile(gomod)
		switch {
		case err == nil:
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", fmt.Errorf("%s: missing module directive", gomod)
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				return "", err
			}
			if rel == "." {
				return modPath, nil
			}
			return path.Join(modPath, filepath.ToSlash(rel)), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("read %s: %w", gomod, err)
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", fmt.Errorf("%s: %w", dir, ErrNoGoModule)
		}
		root = parent
	}
}
