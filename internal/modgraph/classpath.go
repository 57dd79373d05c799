// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"github.com/zero88/sxbuild/pkg/buildfile"
	"github.com/zero88/sxbuild/pkg/catalog"
)

// collector accumulates coordinates once each, keeping first-seen order.
type collector struct {
	seen map[string]bool
	out  []catalog.Coordinate
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

func (c *collector) add(coords ...catalog.Coordinate) {
	for _, coord := range coords {
		key := coord.String()
		if c.seen[key] {
			continue
		}
		c.seen[key] = true
		c.out = append(c.out, coord)
	}
}

func (g *Graph) refs(m *Module, scope buildfile.Scope) []*Module {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Module, 0, len(m.Projects[scope]))
	for _, p := range m.Projects[scope] {
		if ref, ok := g.modules[p]; ok {
			out = append(out, ref)
		}
	}
	return out
}

// Exposed returns what consumers of m see at compile time: its api
// libraries plus every api project reference and what that reference exposes.
func (g *Graph) Exposed(m *Module) []catalog.Coordinate {
	c := newCollector()
	g.exposed(m, c)
	return c.out
}

func (g *Graph) exposed(m *Module, c *collector) {
	c.add(m.Dependencies[buildfile.ScopeAPI]...)
	for _, ref := range g.refs(m, buildfile.ScopeAPI) {
		c.add(ref.Coordinate())
		g.exposed(ref, c)
	}
}

// Published returns the direct dependencies recorded in m's publication:
// api and implementation libraries and project references.
func (g *Graph) Published(m *Module) []catalog.Coordinate {
	c := newCollector()
	for _, scope := range []buildfile.Scope{buildfile.ScopeAPI, buildfile.ScopeImplementation} {
		c.add(m.Dependencies[scope]...)
		for _, ref := range g.refs(m, scope) {
			c.add(ref.Coordinate())
		}
	}
	return c.out
}

// CompileClasspath returns what m's main source set compiles against.
func (g *Graph) CompileClasspath(m *Module) []catalog.Coordinate {
	c := newCollector()
	g.compile(m, c)
	return c.out
}

func (g *Graph) compile(m *Module, c *collector) {
	for _, scope := range []buildfile.Scope{buildfile.ScopeAPI, buildfile.ScopeImplementation, buildfile.ScopeCompileOnly} {
		c.add(m.Dependencies[scope]...)
		for _, ref := range g.refs(m, scope) {
			c.add(ref.Coordinate())
			g.exposed(ref, c)
		}
	}
}

// RuntimeClasspath returns what m needs at runtime. compileOnly libraries
// are excluded; implementation dependencies of references are included.
func (g *Graph) RuntimeClasspath(m *Module) []catalog.Coordinate {
	c := newCollector()
	g.runtime(m, c)
	return c.out
}

func (g *Graph) runtime(m *Module, c *collector) {
	for _, scope := range []buildfile.Scope{buildfile.ScopeAPI, buildfile.ScopeImplementation} {
		c.add(m.Dependencies[scope]...)
		for _, ref := range g.refs(m, scope) {
			c.add(ref.Coordinate())
			g.runtime(ref, c)
		}
	}
}

// TestFixturesClasspath returns the classpath of m's test fixtures: m
// itself, what m exposes and the fixtures' own declarations. It is empty
// for modules without the test-fixtures capability.
func (g *Graph) TestFixturesClasspath(m *Module) []catalog.Coordinate {
	if !m.TestFixtures {
		return nil
	}
	c := newCollector()
	g.fixtures(m, c)
	return c.out
}

func (g *Graph) fixtures(m *Module, c *collector) {
	c.add(m.Coordinate())
	g.exposed(m, c)
	c.add(m.Dependencies[buildfile.ScopeTestFixtures]...)
	for _, ref := range g.refs(m, buildfile.ScopeTestFixtures) {
		c.add(ref.Coordinate())
		g.exposed(ref, c)
	}
}

// TestClasspath returns the classpath of m's tests: the main compile and
// runtime classpaths, test declarations and m's own fixtures.
func (g *Graph) TestClasspath(m *Module) []catalog.Coordinate {
	c := newCollector()
	g.compile(m, c)
	g.runtime(m, c)
	c.add(m.Dependencies[buildfile.ScopeTest]...)
	for _, ref := range g.refs(m, buildfile.ScopeTest) {
		c.add(ref.Coordinate())
		g.runtime(ref, c)
	}
	if m.TestFixtures {
		c.add(m.FixturesCoordinate())
		c.add(m.Dependencies[buildfile.ScopeTestFixtures]...)
		for _, ref := range g.refs(m, buildfile.ScopeTestFixtures) {
			c.add(ref.Coordinate())
			g.exposed(ref, c)
		}
	}
	return c.out
}

// GeneratorClasspath returns the code generator inputs declared by m.
func (g *Graph) GeneratorClasspath(m *Module) []catalog.Coordinate {
	c := newCollector()
	c.add(m.Dependencies[buildfile.ScopeCodeGenerator]...)
	return c.out
}
