package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	Log = newLogger(output, zerolog.InfoLevel)
	log.Logger = Log
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the log level. Server modes ("debug", "release") are accepted
// alongside zerolog level names.
func SetLevel(levelStr string) {
	level := ParseLevel(levelStr)
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}

// SetOutput swaps the writer of the global logger, keeping its level.
func SetOutput(w io.Writer) {
	Log = newLogger(w, Log.GetLevel())
	log.Logger = Log
}

// ParseLevel maps a level or server mode name to a zerolog level.
func ParseLevel(levelStr string) zerolog.Level {
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel
	case "release", "":
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		return zerolog.InfoLevel
	}
	return level
}
