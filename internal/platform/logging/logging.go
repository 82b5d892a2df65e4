package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

// New builds the root logger. Unknown levels fall back to info.
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "feedvault",
		Level:  lvl,
		Output: out,
	})
}
