// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// RootPath is the path of the root aggregator module.
const RootPath ModulePath = ":"

// ErrInvalidModulePath is the sentinel wrapped by InvalidModulePathError.
var ErrInvalidModulePath = errors.New("invalid module path")

var modulePathRE = regexp.MustCompile(`^:([a-z0-9][a-z0-9._-]*(:[a-z0-9][a-z0-9._-]*)*)?$`)

type (
	// ModulePath is a colon-separated module address such as ":ratelimit:api".
	ModulePath string

	// InvalidModulePathError is returned when a ModulePath is malformed.
	InvalidModulePathError struct {
		Value ModulePath
	}
)

// Error implements the error interface.
func (e *InvalidModulePathError) Error() string {
	return fmt.Sprintf("invalid module path %q", e.Value)
}

// Unwrap returns ErrInvalidModulePath.
func (e *InvalidModulePathError) Unwrap() error { return ErrInvalidModulePath }

// Validate returns an error if the path is malformed.
func (p ModulePath) Validate() error {
	if !modulePathRE.MatchString(string(p)) {
		return &InvalidModulePathError{Value: p}
	}
	return nil
}

// String returns the path text.
func (p ModulePath) String() string { return string(p) }

// IsRoot reports whether p is the root module.
func (p ModulePath) IsRoot() bool { return p == RootPath }

// Segments returns the path's components; the root has none.
func (p ModulePath) Segments() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(p), ":"), ":")
}

// Name returns the last segment, or "" for the root.
func (p ModulePath) Name() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Parent returns the enclosing module path. The root has no parent.
func (p ModulePath) Parent() (ModulePath, bool) {
	if p.IsRoot() {
		return "", false
	}
	i := strings.LastIndex(string(p), ":")
	if i == 0 {
		return RootPath, true
	}
	return p[:i], true
}

// Child returns the path of the named child module.
func (p ModulePath) Child(name string) ModulePath {
	if p.IsRoot() {
		return ModulePath(":" + name)
	}
	return ModulePath(string(p) + ":" + name)
}

// Dir returns the default slash-separated directory relative to the project root.
func (p ModulePath) Dir() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return "."
	}
	return path.Join(segs...)
}

// Depth returns the number of segments.
func (p ModulePath) Depth() int { return len(p.Segments()) }
