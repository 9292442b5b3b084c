package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMetricsAddr     = "off"
	defaultSessionLifetime = 8 * time.Hour
	defaultExportDir       = "exports"

	defaultExportPollInterval = 1500 * time.Millisecond
	defaultExportPollAttempts = 21
)

// Config holds the console runtime configuration.
type Config struct {
	BackendBaseURL     string
	HTTPAddr           string
	MetricsAddr        string
	DatabaseURL        string
	AuthCookieSecure   bool
	SessionLifetime    time.Duration
	ExportDir          string
	ExportPollInterval time.Duration
	ExportPollAttempts int
}

// LoadOptions controls which settings are mandatory for the invoking command.
type LoadOptions struct {
	RequireBackendURL bool
}

// Load reads configuration for commands that talk to the backend.
func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireBackendURL: true})
}

// LoadWithOptions reads configuration from the environment, tolerating a missing .env file.
func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		BackendBaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")), "/"),
		HTTPAddr:           getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:        getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AuthCookieSecure:   getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		SessionLifetime:    defaultSessionLifetime,
		ExportDir:          getenvDefault("EXPORT_DIR", defaultExportDir),
		ExportPollInterval: defaultExportPollInterval,
		ExportPollAttempts: defaultExportPollAttempts,
	}

	if v := os.Getenv("SESSION_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionLifetime = d
		}
	}
	if v := os.Getenv("EXPORT_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ExportPollInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("EXPORT_POLL_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.ExportPollAttempts = n
		}
	}

	if opts.RequireBackendURL && cfg.BackendBaseURL == "" {
		return cfg, errors.New("BACKEND_BASE_URL is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBoolDefault(key string, def bool) bool {
	switch strings.TrimSpace(os.Getenv(key)) {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
