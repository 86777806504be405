// Command invariant-ops-doc prints every operation a build of invariant
// ships, one per line, sorted by name, each with its required parameters —
// a quick reference for authors writing graph documents against a given
// binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/invariant-run/invariant/internal/registry"
	"github.com/invariant-run/invariant/ops/poly"
	"github.com/invariant-run/invariant/ops/stdlib"
)

func main() {
	root := &cobra.Command{
		Use:   "invariant-ops-doc",
		Short: "List the operations registered in this build",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	r := registry.New()
	if err := r.RegisterPackage("stdlib", stdlib.Operations()); err != nil {
		return err
	}
	if err := r.RegisterPackage("poly", poly.Operations()); err != nil {
		return err
	}
	for _, name := range r.Names() {
		op, _ := r.Get(name)
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s required=%v\n", name, op.Required)
	}
	return nil
}
