package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-analytics/internal/config"
)

// New creates the service logger from config, writing to stdout
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger writing to w
// LOG_FORMAT=console switches to the human-readable console writer; JSON otherwise
func NewWithWriter(cfg *config.Config, w io.Writer) zerolog.Logger {
	output := w
	if cfg.LogFormat == "console" {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(ParseLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", "wealthflow-analytics").
		Str("env", cfg.Env).
		Logger()
}

// ParseLevel converts a LOG_LEVEL value to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
