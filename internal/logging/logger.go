// Package logging builds the service's structured logger.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a timestamped logger writing to w. Unknown levels fall back to info.
func New(level string, w io.Writer) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
		Prefix:          "boxscore-validator",
	})
}
