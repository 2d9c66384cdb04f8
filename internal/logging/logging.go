// Package logging configures the process-wide zerolog logger. Components
// derive sub-loggers tagged with their name via log.With().
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger writing human-readable output to stderr.
// An empty or unknown level falls back to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
