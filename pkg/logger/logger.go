package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Env     string
	Level   string // overrides the env default when set
	Console bool
	Out     io.Writer
}

// New builds the service logger: debug in dev, info elsewhere, JSON unless
// Console is set.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	l := zerolog.New(out).With().Timestamp().Logger()
	return l.Level(ParseLevel(opts.Level, opts.Env))
}

func ParseLevel(level, env string) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		return lvl
	}
	if env == "dev" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
