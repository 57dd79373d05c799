// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zero88/sxbuild/pkg/fspath"
)

// copyPartials copies the files below src whose slash-separated relative
// path matches one of include into dst, substituting tokens with r. A
// missing src contributes nothing. It returns the copied relative paths and
// how many destination files changed.
func copyPartials(src, dst string, include []string, r *strings.Replacer) (copied []string, written int, err error) {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(include, rel) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fragment: %w", err)
		}
		changed, err := fspath.WriteIfChanged(filepath.Join(dst, filepath.FromSlash(rel)), []byte(r.Replace(string(data))), 0o644)
		if err != nil {
			return err
		}
		if changed {
			written++
		}
		copied = append(copied, rel)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect fragments from %s: %w", src, err)
	}
	return copied, written, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
