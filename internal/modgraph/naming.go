// SPDX-License-Identifier: MPL-2.0

package modgraph

import "strings"

// ParentMarker is the base-name token stripped when deriving child names.
const ParentMarker = "parent"

// Rename drops every "parent" token from a dash-separated base name:
// "ratelimit-parent" becomes "ratelimit".
func Rename(base string) string {
	tokens := strings.Split(base, "-")
	kept := tokens[:0]
	for _, tok := range tokens {
		if tok != ParentMarker {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, "-")
}

// ChildBaseName derives a child's base artifact name from its parent's.
func ChildBaseName(parentBase, child string) string {
	renamed := Rename(parentBase)
	if renamed == "" {
		return child
	}
	return renamed + "-" + child
}
