// Package param implements the parameter tree: the unresolved shape of a
// vertex's inputs, as spec §3 defines it. A tree is built from five node
// kinds — literal, reference marker, expression marker, and the two
// recursive composites — and is walked by internal/resolve against a
// variable environment to produce a fully-resolved manifest.
package param

import "github.com/invariant-run/invariant/internal/value"

// Node is a parameter tree node.
type Node interface {
	isNode()
}

// Literal wraps a plain Value: usually Null, Bool, Int, Decimal, or a Str
// (which may itself contain "${...}" interpolation segments, detected by
// the resolver, not by the tree). A "$literal" escape decoded by
// internal/loadgraph can also carry a List or Map here.
type Literal struct {
	V value.Value
}

// Ref is a reference marker: resolves to the named dependency's artifact.
type Ref struct {
	Name string
}

// Expr is an expression marker: resolves to the evaluator's result for
// Source.
type Expr struct {
	Source string
}

// List is an ordered sequence of parameter tree nodes.
type List []Node

// Map is a mapping from string keys to parameter tree nodes. Keys are not
// markers and pass through resolution unchanged.
type Map map[string]Node

func (Literal) isNode() {}
func (Ref) isNode()     {}
func (Expr) isNode()    {}
func (List) isNode()    {}
func (Map) isNode()     {}

// CollectRefs returns every dependency name referenced anywhere in the
// tree via a Ref marker, in the order first encountered. Used by vertex
// construction to check that every reference names a declared dependency.
func CollectRefs(n Node) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch tn := n.(type) {
		case Ref:
			if !seen[tn.Name] {
				seen[tn.Name] = true
				out = append(out, tn.Name)
			}
		case List:
			for _, elem := range tn {
				walk(elem)
			}
		case Map:
			for _, v := range tn {
				walk(v)
			}
		}
	}
	walk(n)
	return out
}
