// Package logging wraps github.com/hashicorp/go-hclog the way the
// teacher wires its own logger: the core itself emits no logs (spec §7),
// but the executor host and CLI accept an hclog.Logger for purely
// observational output that never affects control flow.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// EnvVar is read for the logger's minimum level, mirroring the teacher's
// TF_LOG convention.
const EnvVar = "INVARIANT_LOG"

// NewHCLogger builds a named logger at the level named by INVARIANT_LOG
// (default: Warn). An empty or unrecognised value falls back to Warn
// rather than failing, since logging must never be why a run aborts.
func NewHCLogger(name string) hclog.Logger {
	level := hclog.LevelFromString(os.Getenv(EnvVar))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           level,
		Output:          os.Stderr,
		IncludeLocation: level <= hclog.Debug,
	})
}

// Null returns a logger that discards everything, the default the core
// packages fall back to when no logger is supplied.
func Null() hclog.Logger {
	return hclog.NewNullLogger()
}
