package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger builds a logger for w at the named level. Unknown levels fall
// back to info; config validation has already rejected them.
func newLogger(w io.Writer, level, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
