// SPDX-License-Identifier: MPL-2.0

// Package dag orders and runs build tasks. Graph provides a deterministic
// topological sort with cycle detection; Executor runs tasks concurrently
// once their inputs are complete.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError reports nodes that could not be ordered because they sit on
	// or behind a cycle.
	CycleError struct {
		Cycle []string
	}

	// Graph is a directed graph keyed by node name. An edge from A to B means
	// A must complete before B starts.
	Graph struct {
		edges map[string][]string
		// nodes keeps insertion order so sorting is deterministic.
		nodes []string
		known map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		edges: make(map[string][]string),
		known: make(map[string]bool),
	}
}

// AddNode adds name if it is not present yet.
func (g *Graph) AddNode(name string) {
	if g.known[name] {
		return
	}
	g.known[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that from runs before to, adding both nodes as needed.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// Has reports whether name is a node.
func (g *Graph) Has(name string) bool {
	return g.known[name]
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Dependents returns the nodes with an edge from name, without duplicates.
func (g *Graph) Dependents(name string) []string {
	return slices.Compact(slices.Clone(g.edges[name]))
}

// TopologicalSort orders the nodes with Kahn's algorithm. Nodes that become
// ready together keep their insertion order. A cycle yields *CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	pending := make(map[string]int, len(g.nodes))
	for _, targets := range g.edges {
		for _, to := range targets {
			pending[to]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if pending[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, to := range g.edges[n] {
			pending[to]--
			if pending[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) < len(g.nodes) {
		var stuck []string
		for _, n := range g.nodes {
			if pending[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, &CycleError{Cycle: stuck}
	}
	return order, nil
}
