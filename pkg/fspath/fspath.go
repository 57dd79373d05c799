// SPDX-License-Identifier: MPL-2.0

// Package fspath holds the path helpers shared by the build tasks: output
// ownership checks and content-addressed writes that leave unchanged files
// (and their modification times) alone.
package fspath

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Overlaps reports whether a and b are the same location or one contains
// the other. Both are cleaned first.
func Overlaps(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	return a == b || Within(a, b) || Within(b, a)
}

// Within reports whether p lies strictly inside root.
func Within(root, p string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// WriteIfChanged writes data to path unless the file already holds exactly
// data. Parent directories are created as needed. It reports whether the
// file was written.
func WriteIfChanged(path string, data []byte, perm fs.FileMode) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// CopyFile copies src to dst through WriteIfChanged.
func CopyFile(src, dst string) (bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", src, err)
	}
	return WriteIfChanged(dst, data, 0o644)
}
