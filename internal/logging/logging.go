package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const service = "iqamahs"

func NewLogger(level string) zerolog.Logger {
	return New(level, os.Stdout)
}

// New writes JSON lines to w at the given level.
func New(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(ParseLevel(level))

	return zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}

// Open logs to path, appending. An empty path discards everything, which is
// what the terminal browser wants when no log file is configured.
func Open(level, path string) (zerolog.Logger, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return New(level, io.Discard), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, f), f.Close, nil
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
