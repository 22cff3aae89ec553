// Package logger builds the zerolog logger shared by the API and the worker.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
)

// New returns a JSON logger writing to stdout. In the local environment a
// human readable console writer is used instead.
func New(cfg config.AppSettings, loc *time.Location) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "local" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, cfg.LogLevel, loc)
}

// NewWithWriter is New with an explicit sink, used by tests.
func NewWithWriter(w io.Writer, level string, loc *time.Location) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if loc == nil {
		loc = time.UTC
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time { return time.Now().In(loc) }
	zerolog.TimestampFieldName = "ts"

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
