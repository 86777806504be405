// Package dot renders a graph.Graph in the Graphviz DOT language, for
// inspecting a load graph's shape before running it.
package dot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/invariant-run/invariant/internal/graph"
)

// Write generates a DOT-language representation of g on w. Op vertices
// are drawn as boxes, sub-graph vertices as three-dimensional boxes, and
// dependency edges point from dependency to dependent (the direction
// data actually flows).
//
// If Write returns an error then an unspecified amount of partial data
// may already have reached w.
func Write(g *graph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("digraph {\n"); err != nil {
		return err
	}
	if _, err := bw.WriteString("  node [shape=box];\n"); err != nil {
		return err
	}

	names := g.Names()

	for _, name := range names {
		v, _ := g.Get(name)
		if err := writeNode(bw, v); err != nil {
			return err
		}
	}
	for _, name := range names {
		v, _ := g.Get(name)
		for _, dep := range v.Deps {
			if err := writeEdge(bw, dep, name); err != nil {
				return err
			}
		}
	}

	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, v *graph.Vertex) error {
	label := v.Name
	shape := "box"
	if v.IsSubGraph() {
		shape = "box3d"
		label = fmt.Sprintf("%s\\n(sub-graph → %s)", v.Name, v.Output)
	} else {
		label = fmt.Sprintf("%s\\n%s", v.Name, v.Op)
		if !v.Cache {
			label += "\\n[ephemeral]"
		}
	}
	_, err := fmt.Fprintf(w, "  %s [label=%s, shape=%s];\n", quoteID(v.Name), quoteLabel(label), shape)
	return err
}

func writeEdge(w *bufio.Writer, from, to string) error {
	_, err := fmt.Fprintf(w, "  %s -> %s;\n", quoteID(from), quoteID(to))
	return err
}

// quoteID renders an identifier as a quoted Graphviz ID, escaping any
// embedded quote characters.
func quoteID(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// quoteLabel renders a label string, leaving the \n sequences used for
// manual line breaks intact while escaping literal quotes.
func quoteLabel(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
