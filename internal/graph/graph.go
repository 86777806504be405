package graph

import (
	"github.com/invariant-run/invariant/internal/diag"
)

// Graph is a mapping from vertex name to Vertex. It preserves the order
// vertices were added in, since dependency lists and the resolver's
// topological sort both treat original vertex order as the tie-breaker
// for otherwise-equivalent choices.
type Graph struct {
	order    []string
	vertices map[string]*Vertex
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{vertices: map[string]*Vertex{}}
}

// Add inserts v, failing if the graph already has a vertex of that name.
func (g *Graph) Add(v *Vertex) error {
	if _, exists := g.vertices[v.Name]; exists {
		return diag.ForVertexf(diag.KindValidation, v.Name, "duplicate vertex name")
	}
	g.vertices[v.Name] = v
	g.order = append(g.order, v.Name)
	return nil
}

// Get returns the named vertex, if present.
func (g *Graph) Get(name string) (*Vertex, bool) {
	v, ok := g.vertices[name]
	return v, ok
}

// Names returns every vertex name in insertion order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of vertices in the graph.
func (g *Graph) Len() int { return len(g.order) }
