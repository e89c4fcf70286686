package observability

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// NewLogger builds the diagnostic logger shared by all components. Unknown
// levels fall back to info.
func NewLogger(level string, w io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "folio",
		Level:  lvl,
		Output: w,
	})
}
