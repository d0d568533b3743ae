// Package testlog routes global log output through the test runner.
package testlog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	log.Logger = zerolog.New(zerolog.NewTestWriter(t))
	log.Info().Str("test", t.Name()).Msg("start")
}

// Logger returns a logger scoped to t for packages that take one
// explicitly instead of using the global.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t))
}
