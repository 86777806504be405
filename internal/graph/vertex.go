// Package graph implements the graph data model and resolver from spec
// §3/§4.5: vertex construction invariants, dependency/op-name validation,
// cycle detection, and a deterministic topological sort.
package graph

import (
	"strings"

	"github.com/invariant-run/invariant/internal/diag"
	"github.com/invariant-run/invariant/internal/param"
)

// Vertex is one named node in a Graph. It is either an op vertex (Op is
// non-empty, Inner is nil) or a sub-graph vertex (Inner is non-nil, Op is
// empty). Vertices are frozen once constructed: the constructors below are
// the only way to build one, and they enforce spec §3's invariants.
type Vertex struct {
	Name   string
	Deps   []string
	Params param.Node

	// Op-vertex fields.
	Op    string
	Cache bool // defaults true; false means ephemeral (never cached)

	// Sub-graph vertex fields.
	Inner  *Graph
	Output string
}

// IsSubGraph reports whether v is a sub-graph vertex.
func (v *Vertex) IsSubGraph() bool { return v.Inner != nil }

// NewOpVertex constructs an op vertex, enforcing that op is non-empty
// after trimming and that every reference marker in params names a
// declared dependency.
func NewOpVertex(name, op string, params param.Node, deps []string, cache bool) (*Vertex, error) {
	if strings.TrimSpace(op) == "" {
		return nil, diag.ForVertex(diag.KindValidation, name, "op vertex must have a non-empty operation name")
	}
	if err := checkRefsDeclared(name, params, deps); err != nil {
		return nil, err
	}
	return &Vertex{
		Name:   name,
		Op:     op,
		Params: params,
		Deps:   append([]string(nil), deps...),
		Cache:  cache,
	}, nil
}

// NewSubGraphVertex constructs a sub-graph vertex, enforcing that output
// names a vertex of inner, and that every reference marker in params
// names a declared dependency.
func NewSubGraphVertex(name string, params param.Node, deps []string, inner *Graph, output string) (*Vertex, error) {
	if inner == nil {
		return nil, diag.ForVertex(diag.KindValidation, name, "sub-graph vertex requires an inner graph")
	}
	if _, ok := inner.Get(output); !ok {
		return nil, diag.ForVertexf(diag.KindValidation, name, "sub-graph output %q is not a vertex of the inner graph", output)
	}
	if err := checkRefsDeclared(name, params, deps); err != nil {
		return nil, err
	}
	return &Vertex{
		Name:   name,
		Params: params,
		Deps:   append([]string(nil), deps...),
		Inner:  inner,
		Output: output,
	}, nil
}

func checkRefsDeclared(name string, params param.Node, deps []string) error {
	declared := make(map[string]bool, len(deps))
	for _, d := range deps {
		declared[d] = true
	}
	for _, ref := range param.CollectRefs(params) {
		if !declared[ref] {
			return diag.ForVertexf(diag.KindValidation, name, "reference marker %q is not among the vertex's declared dependencies", ref)
		}
	}
	return nil
}
