// SPDX-License-Identifier: MPL-2.0

package versionpool

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/zero88/sxbuild/internal/issue"

	"golang.org/x/mod/semver"
)

// ErrMalformedVersion is returned by Parse for strings that are not "<major>.<minor>".
var ErrMalformedVersion = errors.New("malformed resolved version")

// ErrMissingEntry is wrapped by the errors of a (major, patch) lookup that
// falls outside a table.
var ErrMissingEntry = errors.New("version pool entry missing")

type (
	// Table is an immutable major -> ordered minor-version list mapping.
	Table struct {
		entries map[int][]int
	}

	// ResolvedVersion is a "<major>.<minor>" string produced by Table.Resolve.
	ResolvedVersion string

	// Pool groups one Table per dependency family.
	Pool struct {
		families map[string]*Table
	}

	// Selector addresses one entry of a family table. Release, when set, is
	// prepended to the resolved version to form the full coordinate
	// version: Release 4 with resolved "4.4" yields "4.4.4".
	Selector struct {
		Family  string
		Release string
		Major   int
		Patch   int
	}
)

// NewTable copies entries into a new Table.
func NewTable(entries map[int][]int) *Table {
	t := &Table{entries: make(map[int][]int, len(entries))}
	for major, minors := range entries {
		t.entries[major] = slices.Clone(minors)
	}
	return t
}

// Majors returns the table's major keys in ascending order.
func (t *Table) Majors() []int {
	return slices.Sorted(maps.Keys(t.entries))
}

// Minors returns a copy of the minor list for major, or nil.
func (t *Table) Minors(major int) []int {
	return slices.Clone(t.entries[major])
}

// Resolve returns "<major>.<minor>" where minor is the entry at index patch
// of the major's list. A missing major or an out-of-range patch is a
// configuration error.
func (t *Table) Resolve(major, patch int) (ResolvedVersion, error) {
	minors, ok := t.entries[major]
	if !ok {
		return "", issue.NewConfigurationError("", strconv.Itoa(major),
			"major version %d not in table (known: %v): %w", major, t.Majors(), ErrMissingEntry)
	}
	if patch < 0 || patch >= len(minors) {
		return "", issue.NewConfigurationError("", fmt.Sprintf("%d[%d]", major, patch),
			"patch index %d out of range for major %d (0..%d): %w", patch, major, len(minors)-1, ErrMissingEntry)
	}
	return ResolvedVersion(fmt.Sprintf("%d.%d", major, minors[patch])), nil
}

// String returns the version text.
func (v ResolvedVersion) String() string { return string(v) }

// Parse splits a resolved version back into its (major, minor) pair.
func Parse(v ResolvedVersion) (major, minor int, err error) {
	head, tail, ok := strings.Cut(string(v), ".")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedVersion, v)
	}
	if major, err = strconv.Atoi(head); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedVersion, v)
	}
	if minor, err = strconv.Atoi(tail); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedVersion, v)
	}
	return major, minor, nil
}

// NewPool builds a Pool from per-family tables. Each table is copied.
func NewPool(families map[string]map[int][]int) *Pool {
	p := &Pool{families: make(map[string]*Table, len(families))}
	for name, entries := range families {
		p.families[name] = NewTable(entries)
	}
	return p
}

// Families returns the family names in sorted order.
func (p *Pool) Families() []string {
	return slices.Sorted(maps.Keys(p.families))
}

// Table returns the family's table, or nil.
func (p *Pool) Table(family string) *Table {
	return p.families[family]
}

// Resolve resolves (major, patch) against the family's table.
func (p *Pool) Resolve(family string, major, patch int) (ResolvedVersion, error) {
	t, ok := p.families[family]
	if !ok {
		return "", issue.NewConfigurationError("", family,
			"unknown version pool family %q (known: %s)", family, strings.Join(p.Families(), ", "))
	}
	v, err := t.Resolve(major, patch)
	if err != nil {
		var ce *issue.ConfigurationError
		if errors.As(err, &ce) {
			ce.Key = family + "." + ce.Key
		}
		return "", err
	}
	return v, nil
}

// Version resolves the selector into a full version string and checks it is
// a valid semantic version.
func (p *Pool) Version(s Selector) (string, error) {
	resolved, err := p.Resolve(s.Family, s.Major, s.Patch)
	if err != nil {
		return "", err
	}
	full := resolved.String()
	if s.Release != "" {
		full = s.Release + "." + full
	}
	if !semver.IsValid("v" + full) {
		return "", issue.NewConfigurationError("", s.Family,
			"selector yields %q which is not a semantic version", full)
	}
	return full, nil
}
