// Package logging builds the application's zerolog logger from configuration.
// Development gets a human-readable console writer; every other environment gets JSON lines
// so log shippers can parse them.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trentd187/cup-trip/internal/config"
)

// New returns a logger writing to stdout, configured from cfg.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
// An unknown LOG_LEVEL falls back to info and is reported once through the new logger.
func NewWithWriter(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.IsDevelopment() {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "cup-trip").
		Str("env", cfg.Env).
		Logger()

	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
	}
	return logger
}
