package main

import "github.com/mitchellh/cli"

const version = "0.1.0"

// commands is the mapping of all available invariant subcommands,
// mirroring the teacher's own commands-map wiring in cmd/tofu.
func commands() map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &RunCommand{Ui: Ui}, nil
		},
		"cache stats": func() (cli.Command, error) {
			return &CacheStatsCommand{Ui: Ui}, nil
		},
		"cache clear": func() (cli.Command, error) {
			return &CacheClearCommand{Ui: Ui}, nil
		},
		"graph dot": func() (cli.Command, error) {
			return &GraphDotCommand{Ui: Ui}, nil
		},
	}
}
