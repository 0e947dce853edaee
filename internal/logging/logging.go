// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// VISUALYSIUM_LOG controls the log level: debug, info, warn, error (default: info)
func Init() {
	SetLevel(os.Getenv("VISUALYSIUM_LOG"))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// SetLevel adjusts the global log level. Unknown values fall back to info.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
