package infra

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide logger. Production emits JSON at info
// level for log shipping; development switches to the console writer at
// debug level so pipeline traces (variation fan-out, ingest, refunds) stay
// readable.
func NewLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "fluxgallery").
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

// Logger is the logging type handed to constructors across the module.
// Aliasing it here keeps zerolog out of most import lists and leaves one
// place to swap the backend.
type Logger = zerolog.Logger
