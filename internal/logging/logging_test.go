package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	prev, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(level)
	})
}

func TestInitWriterInfoLevel(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	InitWriter(&buf, false)

	logger := Task("lintCheck")
	logger.Debug().Msg("starting linter")
	logger.Info().Msg("running task")

	out := buf.String()
	assert.Contains(t, out, "running task")
	assert.Contains(t, out, "lintCheck")
	assert.NotContains(t, out, "starting linter")
}

func TestInitWriterDebugLevel(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	InitWriter(&buf, true)

	logger := Task("lintFormat")
	logger.Debug().Msg("starting linter")

	assert.Contains(t, buf.String(), "starting linter")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
