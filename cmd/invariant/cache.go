package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
)

// CacheStatsCommand prints the store's hit/miss/put counters.
type CacheStatsCommand struct {
	Ui cli.Ui
}

func (c *CacheStatsCommand) Help() string {
	return strings.TrimSpace(`
Usage: invariant cache stats

  Prints hit/miss/put counters for the default artifact store.
`)
}

func (c *CacheStatsCommand) Synopsis() string { return "Show store hit/miss/put counters" }

func (c *CacheStatsCommand) Run(args []string) int {
	s, err := newDefaultStore()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("opening store: %s", err))
		return 1
	}
	stats := s.Stats()
	c.Ui.Output(fmt.Sprintf("hits   = %d", stats.Hits))
	c.Ui.Output(fmt.Sprintf("misses = %d", stats.Misses))
	c.Ui.Output(fmt.Sprintf("puts   = %d", stats.Puts))
	return 0
}

// CacheClearCommand resets the store's counters. For the disk tier this is
// a statistics reset only: artifacts already on disk are left in place,
// since a persistent store's whole purpose is to survive across runs.
type CacheClearCommand struct {
	Ui cli.Ui
}

func (c *CacheClearCommand) Help() string {
	return strings.TrimSpace(`
Usage: invariant cache clear

  Resets the default store's hit/miss/put counters. Does not delete
  artifacts already persisted to disk.
`)
}

func (c *CacheClearCommand) Synopsis() string { return "Reset store counters" }

func (c *CacheClearCommand) Run(args []string) int {
	s, err := newDefaultStore()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("opening store: %s", err))
		return 1
	}
	s.Clear()
	c.Ui.Output("store counters cleared")
	return 0
}
