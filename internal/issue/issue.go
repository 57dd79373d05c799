// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies an entry of the issue catalog.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	BuildfileNotFoundId
	BuildfileParseErrorId
	CatalogParseErrorId
	VersionEntryMissingId
	DependencyRoleMissingId
	DependencyCycleId
	LayerViolationId
	GenerationFailedId
	DocsPoolMismatchId
	RendererFailedId
)

type (
	// MarkdownMsg is Markdown text rendered to the terminal.
	MarkdownMsg string

	// HttpLink is a documentation URL appended under "See also".
	HttpLink string

	// Issue is a catalog entry with user guidance for one failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// render is swapped in tests to avoid terminal-dependent output.
var render = glamour.Render

// Id returns the catalog identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render returns the guidance rendered with the named glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var issues = map[Id]*Issue{
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the user configuration

## Things you can try
- Check the CUE syntax of your config file
- Print the defaults with:
~~~
$ sxbuild config dump
~~~`,
	},
	BuildfileNotFoundId: {
		id: BuildfileNotFoundId,
		mdMsg: `
# No build descriptor found

sxbuild looks for ` + "`sxbuild.cue`" + ` in the project directory.

## Things you can try
- Run sxbuild from the project root
- Pass the directory explicitly with ` + "`--project <dir>`",
	},
	BuildfileParseErrorId: {
		id: BuildfileParseErrorId,
		mdMsg: `
# The build descriptor is invalid

The descriptor did not validate against the ` + "`#Buildfile`" + ` schema.
The error lists the CUE path of every offending field.`,
	},
	CatalogParseErrorId: {
		id: CatalogParseErrorId,
		mdMsg: `
# The version catalog is invalid

Pool tables must be keyed by integer major versions and hold integer
minor-version lists. Libraries need either ` + "`version`" + ` or ` + "`pool`" + `.`,
	},
	VersionEntryMissingId: {
		id: VersionEntryMissingId,
		mdMsg: `
# A version pool entry is missing

A (major, patch) selector points outside its pool table. Versions are never
defaulted: append the missing entry to the pool or fix the selector.`,
	},
	DependencyRoleMissingId: {
		id: DependencyRoleMissingId,
		mdMsg: `
# A dependency role has no catalog entry

Map the role to a library alias in the ` + "`[roles]`" + ` table of the catalog.`,
	},
	DependencyCycleId: {
		id: DependencyCycleId,
		mdMsg: `
# Module dependency cycle

Project references between modules must form an acyclic graph.`,
	},
	LayerViolationId: {
		id: LayerViolationId,
		mdMsg: `
# A lower module depends on a higher one

Modules may only reference modules of the same or a lower ` + "`layer`" + `.`,
	},
	GenerationFailedId: {
		id: GenerationFailedId,
		mdMsg: `
# Some API members could not be generated

Every listed member uses a shape the target idiom cannot express. Other
members and targets were generated normally.`,
	},
	DocsPoolMismatchId: {
		id: DocsPoolMismatchId,
		mdMsg: `
# The documentation pool names an unknown module

Every path listed under ` + "`projectPool`" + ` must exist in ` + "`modules`" + `.`,
	},
	RendererFailedId: {
		id: RendererFailedId,
		mdMsg: `
# The external documentation renderer failed

The renderer command runs once over the assembled bundle, with ` + "`$IN`" + `
set to the bundle directory and ` + "`$OUT`" + ` to its ` + "`site`" + ` directory.`,
	},
}

// Values returns all catalog entries ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
