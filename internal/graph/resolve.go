package graph

import (
	"github.com/invariant-run/invariant/internal/diag"
)

// OpRegistry is the narrow capability the graph resolver needs from an
// operation registry: whether a name is registered. internal/registry's
// Registry type satisfies this without the graph package importing it
// directly.
type OpRegistry interface {
	Has(name string) bool
}

// Resolve validates graph g against contextKeys (the set of names the
// caller's Context supplies) and an optional registry, then returns a
// topological order suitable for execution. registry may be nil, in which
// case step 2 of validation (operation existence) is skipped.
func Resolve(g *Graph, contextKeys map[string]bool, registry OpRegistry) ([]string, error) {
	if err := validateDeps(g, contextKeys); err != nil {
		return nil, err
	}
	if registry != nil {
		if err := validateOps(g, registry); err != nil {
			return nil, err
		}
	}
	if err := detectCycle(g); err != nil {
		return nil, err
	}
	return topoSort(g, contextKeys), nil
}

func validateDeps(g *Graph, contextKeys map[string]bool) error {
	var multi diag.Multi
	for _, name := range g.Names() {
		v, _ := g.Get(name)
		for _, dep := range v.Deps {
			if _, ok := g.Get(dep); ok {
				continue
			}
			if contextKeys[dep] {
				continue
			}
			multi.Append(diag.ForVertexf(diag.KindValidation, name, "dependency %q is neither another vertex nor a context key", dep))
		}
	}
	return multi.ErrorOrNil()
}

func validateOps(g *Graph, registry OpRegistry) error {
	var multi diag.Multi
	for _, name := range g.Names() {
		v, _ := g.Get(name)
		if v.IsSubGraph() {
			continue
		}
		if !registry.Has(v.Op) {
			multi.Append(diag.ForVertexf(diag.KindValidation, name, "operation %q is not registered", v.Op))
		}
	}
	return multi.ErrorOrNil()
}

// detectCycle runs a three-colour depth-first search over g, reporting the
// first back edge it finds by naming one vertex on the cycle.
func detectCycle(g *Graph) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, g.Len())

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		v, ok := g.Get(name)
		if ok {
			for _, dep := range v.Deps {
				if _, isVertex := g.Get(dep); !isVertex {
					continue // context dependency, no edge within the graph
				}
				switch color[dep] {
				case gray:
					return diag.ForVertexf(diag.KindValidation, name, "dependency cycle detected through %q", dep)
				case white:
					if err := visit(dep); err != nil {
						return err
					}
				}
			}
		}
		color[name] = black
		return nil
	}

	for _, name := range g.Names() {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort implements Kahn's algorithm over g, using only in-graph
// dependency edges (context dependencies contribute no in-edges since
// they are pre-bound). The initial queue, and every subsequent insertion
// of a newly-ready vertex, follows g's original vertex order, so the
// output order is deterministic and stable across repeated calls on an
// unchanged graph.
func topoSort(g *Graph, contextKeys map[string]bool) []string {
	names := g.Names()
	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))

	for _, name := range names {
		v, _ := g.Get(name)
		for _, dep := range v.Deps {
			if _, isVertex := g.Get(dep); !isVertex {
				continue
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(names))
	for _, name := range names {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(names))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	return order
}
