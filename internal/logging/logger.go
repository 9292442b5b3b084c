package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvFormat selects the structured log handler format.
	EnvFormat = "LOG_FORMAT"
	// EnvLevel selects the minimum severity level.
	EnvLevel = "LOG_LEVEL"

	defaultFormat = "json"
)

// Config is the validated logging configuration derived from environment variables.
type Config struct {
	Format string
	Level  slog.Level
}

// DefaultConfig returns the configuration used when no environment overrides are set.
func DefaultConfig() Config {
	return Config{Format: defaultFormat, Level: slog.LevelInfo}
}

// LoadConfigFromEnv parses and validates the logging environment variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	switch format := strings.ToLower(strings.TrimSpace(os.Getenv(EnvFormat))); format {
	case "":
	case "json", "text":
		cfg.Format = format
	default:
		return Config{}, fmt.Errorf("%s must be one of: json, text", EnvFormat)
	}

	switch level := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLevel))); level {
	case "":
	case "debug":
		cfg.Level = slog.LevelDebug
	case "info":
		cfg.Level = slog.LevelInfo
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	default:
		return Config{}, fmt.Errorf("%s must be one of: debug, info, warn, error", EnvLevel)
	}

	return cfg, nil
}

// NewLogger creates a structured logger carrying the static console context attributes.
func NewLogger(cfg Config, writer io.Writer, command string) *slog.Logger {
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	command = strings.TrimSpace(command)
	if command == "" {
		command = "offboarding-console"
	}
	return slog.New(handler).With("app", "offboarding-console", "command", command)
}

// BootstrapFromEnv loads logging config from env, installs the default logger, and returns it.
func BootstrapFromEnv(command string, writer io.Writer) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, writer, command)
	slog.SetDefault(logger)
	return logger, nil
}
