// Package logging configures the process-wide zerolog logger for lintgate.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs a console logger on stderr. Debug level is enabled when debug is true.
func Init(debug bool) {
	InitWriter(os.Stderr, debug)
}

// InitWriter installs a console logger that writes to out.
func InitWriter(out io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	})
}

// Task returns a logger tagged with the task name.
func Task(name string) zerolog.Logger {
	return log.With().Str("task", name).Logger()
}
