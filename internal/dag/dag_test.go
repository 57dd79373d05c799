// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

type edge struct{ from, to string }

func build(nodes []string, edges []edge) *Graph {
	g := New()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		g.AddEdge(e.from, e.to)
	}
	return g
}

func TestTopologicalSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []string
		edges []edge
		want  []string
	}{
		{name: "empty"},
		{name: "single module", nodes: []string{":core"}, want: []string{":core"}},
		{
			name:  "layers",
			edges: []edge{{":core", ":core:rx"}, {":core:rx", ":docs"}},
			want:  []string{":core", ":core:rx", ":docs"},
		},
		{
			// Facades become ready together and keep declaration order.
			name:  "facades fan out and in",
			nodes: []string{"api::core", "codegen::core:rx", "codegen::core:blocking", "docs"},
			edges: []edge{
				{"api::core", "codegen::core:rx"},
				{"api::core", "codegen::core:blocking"},
				{"codegen::core:rx", "docs"},
				{"codegen::core:blocking", "docs"},
			},
			want: []string{"api::core", "codegen::core:rx", "codegen::core:blocking", "docs"},
		},
		{
			name:  "unrelated modules keep insertion order",
			nodes: []string{":spi", ":core", ":ext"},
			edges: []edge{{":core", ":ext"}},
			want:  []string{":spi", ":core", ":ext"},
		},
		{
			name:  "repeated edge",
			edges: []edge{{":core", ":docs"}, {":core", ":docs"}},
			want:  []string{":core", ":docs"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := build(tt.nodes, tt.edges).TopologicalSort()
			if err != nil {
				t.Fatalf("TopologicalSort() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("TopologicalSort() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []string
		edges []edge
		stuck []string
	}{
		{
			name:  "self reference",
			edges: []edge{{":core", ":core"}},
			stuck: []string{":core"},
		},
		{
			name:  "mutual projects",
			edges: []edge{{":core", ":ext"}, {":ext", ":core"}},
			stuck: []string{":core", ":ext"},
		},
		{
			// :docs is blocked behind the cycle and reported with it.
			name:  "dependent of a cycle",
			nodes: []string{":spi"},
			edges: []edge{{":core", ":ext"}, {":ext", ":core"}, {":ext", ":docs"}},
			stuck: []string{":core", ":ext", ":docs"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := build(tt.nodes, tt.edges).TopologicalSort()
			var cycle *CycleError
			if !errors.As(err, &cycle) {
				t.Fatalf("TopologicalSort() error = %v, want *CycleError", err)
			}
			if !slices.Equal(cycle.Cycle, tt.stuck) {
				t.Errorf("Cycle = %v, want %v", cycle.Cycle, tt.stuck)
			}
		})
	}
}

func TestCycleError(t *testing.T) {
	t.Parallel()

	err := &CycleError{Cycle: []string{":core", ":ext"}}
	if got, want := err.Error(), "dependency cycle detected: :core -> :ext"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestGraphQueries(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("api", "codegen:rx")
	g.AddEdge("api", "codegen:rx")
	g.AddEdge("api", "codegen:mutiny")

	if got := g.Dependents("api"); !slices.Equal(got, []string{"codegen:rx", "codegen:mutiny"}) {
		t.Errorf("Dependents(api) = %v", got)
	}
	if got := g.Dependents("codegen:rx"); len(got) != 0 {
		t.Errorf("Dependents(codegen:rx) = %v, want none", got)
	}
	if !g.Has("codegen:rx") || g.Has("docs") {
		t.Error("Has() mismatch")
	}
	if got := g.Nodes(); !slices.Equal(got, []string{"api", "codegen:rx", "codegen:mutiny"}) {
		t.Errorf("Nodes() = %v", got)
	}
}
