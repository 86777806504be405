// Command invariant is the reference CLI: it loads a graph document, runs
// it to completion against a content-addressed store, and offers small
// utility subcommands for inspecting that store.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// Ui is the cli.Ui used for communicating to the outside world, following
// the same package-variable wiring the teacher's own CLI entrypoint uses.
var Ui cli.Ui

func main() {
	os.Exit(realMain())
}

func realMain() int {
	Ui = newUi()

	c := cli.NewCLI("invariant", version)
	c.Args = os.Args[1:]
	c.Commands = commands()
	c.HelpFunc = cli.BasicHelpFunc("invariant")

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}
