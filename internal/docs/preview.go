// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"os"
	"path/filepath"

	"github.com/zero88/sxbuild/internal/issue"

	"github.com/charmbracelet/glamour"
)

// Preview renders the bundle's index page for the terminal. An empty style
// picks one from the terminal background.
func Preview(b *SiteBundle, style string, width int) (string, error) {
	index := filepath.Join(b.Dir, b.Index)
	data, err := os.ReadFile(index)
	if err != nil {
		return "", issue.WrapWithContext(err, "read documentation index", index)
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if style != "" {
		opts = []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(string(data))
}
