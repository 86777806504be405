package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/invariant-run/invariant/internal/exec"
	"github.com/invariant-run/invariant/internal/loadgraph"
	"github.com/invariant-run/invariant/internal/logging"
	"github.com/invariant-run/invariant/internal/value"
)

// RunCommand loads a graph document and executes it to completion.
type RunCommand struct {
	Ui cli.Ui
}

func (c *RunCommand) Help() string {
	helpText := `
Usage: invariant run [options] <graph.json>

  Loads a graph document and runs it to completion, printing each
  resulting top-level artifact as a "name = value" line, sorted by name.

Options:

  -context=<file>   Path to a JSON object of external context values.
`
	return strings.TrimSpace(helpText)
}

func (c *RunCommand) Synopsis() string {
	return "Execute a graph document"
}

func (c *RunCommand) Run(args []string) int {
	cmdFlags := flag.NewFlagSet("run", flag.ContinueOnError)
	var contextPath string
	cmdFlags.StringVar(&contextPath, "context", "", "path to a JSON context document")
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}

	rest := cmdFlags.Args()
	if len(rest) != 1 {
		c.Ui.Error("exactly one graph document argument is required")
		return 1
	}

	graphData, err := os.ReadFile(rest[0])
	if err != nil {
		c.Ui.Error(fmt.Sprintf("reading graph document: %s", err))
		return 1
	}
	g, err := loadgraph.Load(graphData)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("loading graph: %s", err))
		return 1
	}

	var externalContext value.Map
	if contextPath != "" {
		contextData, err := os.ReadFile(contextPath)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("reading context document: %s", err))
			return 1
		}
		externalContext, err = loadgraph.LoadContext(contextData)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("loading context: %s", err))
			return 1
		}
	}

	opRegistry, err := newOpRegistry()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	s, err := newDefaultStore()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("opening store: %s", err))
		return 1
	}

	e := exec.New(s, opRegistry, exec.WithLogger(logging.NewHCLogger("invariant")))
	result, err := e.Execute(context.Background(), g, externalContext)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("execution failed: %s", err))
		return 1
	}

	for _, name := range sortedKeys(result) {
		c.Ui.Output(fmt.Sprintf("%s = %v", name, result[name]))
	}
	return 0
}

func sortedKeys(m value.Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
