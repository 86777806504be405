package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/invariant-run/invariant/internal/graph/dot"
	"github.com/invariant-run/invariant/internal/loadgraph"
)

// GraphDotCommand renders a graph document as Graphviz DOT, for debugging.
type GraphDotCommand struct {
	Ui cli.Ui
}

func (c *GraphDotCommand) Help() string {
	return strings.TrimSpace(`
Usage: invariant graph dot <graph.json>

  Renders a graph document's vertices and dependency edges as a
  Graphviz DOT digraph, to standard output.
`)
}

func (c *GraphDotCommand) Synopsis() string { return "Render a graph document as Graphviz DOT" }

func (c *GraphDotCommand) Run(args []string) int {
	if len(args) != 1 {
		c.Ui.Error("exactly one graph document argument is required")
		return 1
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		c.Ui.Error(fmt.Sprintf("reading graph document: %s", err))
		return 1
	}
	g, err := loadgraph.Load(data)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("loading graph: %s", err))
		return 1
	}
	if err := dot.Write(g, os.Stdout); err != nil {
		c.Ui.Error(fmt.Sprintf("rendering graph: %s", err))
		return 1
	}
	return 0
}
