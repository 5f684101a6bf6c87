package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global console logger at the given level. Unknown
// levels fall back to info.
func Setup(level string) {
	SetupWriter(os.Stdout, level)
}

// SetupWriter is Setup with a custom output.
func SetupWriter(out io.Writer, level string) {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Room returns a logger tagged with the room code.
func Room(code string) zerolog.Logger {
	return log.With().Str("room", code).Logger()
}
