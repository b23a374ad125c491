package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Options selects the log output. JSON writes raw zerolog events instead of
// the console format.
type Options struct {
	Level   string
	Out     io.Writer
	JSON    bool
	NoColor bool
}

// New builds the root logger. Components derive their own with
// log.With().Str("component", ...).
func New(opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: TimeFormat,
			NoColor:    opts.NoColor,
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel accepts zerolog level names, case-insensitively. An empty
// string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging: unknown level %q", s)
	}
	return level, nil
}
