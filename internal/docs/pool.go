// SPDX-License-Identifier: MPL-2.0

package docs

import (
	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/internal/modgraph"
	"github.com/zero88/sxbuild/pkg/buildfile"
)

// SelectModules returns the modules named by pool, in pool order. Modules
// absent from pool are left out. A pool entry with no matching module is a
// configuration error; key is the pool's name, usually the base project
// name.
func SelectModules(pool []buildfile.ModulePath, key string, modules []*modgraph.Module) ([]*modgraph.Module, error) {
	byPath := make(map[buildfile.ModulePath]*modgraph.Module, len(modules))
	for _, m := range modules {
		byPath[m.Path] = m
	}
	out := make([]*modgraph.Module, 0, len(pool))
	seen := make(map[buildfile.ModulePath]bool, len(pool))
	for _, p := range pool {
		m, ok := byPath[p]
		if !ok {
			return nil, issue.NewConfigurationError(p.String(), "projectPool."+key,
				"pool names a module that is not in the project tree")
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, m)
	}
	return out, nil
}
