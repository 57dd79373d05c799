// SPDX-License-Identifier: MPL-2.0

package docs

import "strings"

// Meta is the project metadata substituted into pages.
type Meta struct {
	Group       string
	ProjectName string
	Version     string
	// CoreDependencyVersion is the resolved version of the core runtime library.
	CoreDependencyVersion string
	Title                 string
}

// Attributes returns the page tokens and their values, keyed by token name
// without braces.
func (m Meta) Attributes() map[string]string {
	return map[string]string{
		"project-group":           m.Group,
		"project-name":            m.ProjectName,
		"project-version":         m.Version,
		"core-dependency-version": m.CoreDependencyVersion,
	}
}

// APITitle is the title of the aggregated API reference.
func (m Meta) APITitle() string {
	title := m.Title
	if title == "" {
		title = m.ProjectName
	}
	return title + " " + m.Version + " API"
}

// Replacer substitutes every {token} of Attributes.
func (m Meta) Replacer() *strings.Replacer {
	return strings.NewReplacer(
		"{project-group}", m.Group,
		"{project-name}", m.ProjectName,
		"{project-version}", m.Version,
		"{core-dependency-version}", m.CoreDependencyVersion,
	)
}
