package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// parseLogLevel maps a config level name to a zerolog level
func parseLogLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// setupConsoleLogging sends logs to stderr for line-mode commands
func setupConsoleLogging(cfg *config.Config) error {
	return setupLogging(cfg, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// setupFileLogging sends logs to cfg.LogFile while the TUI owns the terminal.
// The returned closer must be called on exit.
func setupFileLogging(cfg *config.Config) (io.Closer, error) {
	if cfg.LogFile == "" {
		return io.NopCloser(nil), setupLogging(cfg, io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := setupLogging(cfg, f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func setupLogging(cfg *config.Config, w io.Writer) error {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
