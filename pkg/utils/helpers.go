package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger writes human readable lines, for development.
func NewConsoleLogger(out io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger writes one JSON object per line.
func NewJSONLogger(out io.Writer) zerolog.Logger {
	return zerolog.New(out).
		With().
		Timestamp().
		Logger()
}

// OpenLogFile appends to path, creating it when needed. The terminal UI owns stdout,
// so the chat client logs here instead.
func OpenLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
