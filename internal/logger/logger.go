// internal/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the shared application logger.
var Log zerolog.Logger

// Init configures the logger. Call once at startup before anything logs.
func Init(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	Log = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.InfoLevel)

	if debug {
		Log = Log.Level(zerolog.DebugLevel)
	}
}
