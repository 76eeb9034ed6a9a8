// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes all process-wide
// settings: platform credentials, the moderated channel set, moderation flags,
// database path, admin API, logging, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "r9kbot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AdminConfig defines the optional read-only admin HTTP API.
type AdminConfig struct {
	Addr      string  // listen address; empty disables the admin server
	GinMode   string  // debug|release|test
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)
}

// Config holds all configuration values for the application.
type Config struct {
	// Platform
	Token      string // bot credential for the chat platform
	GatewayURL string // websocket gateway endpoint
	APIBaseURL string // REST endpoint for moderation actions

	// Moderation
	ModeratedChannels []string // channel IDs where uniqueness is enforced
	SilentMode        bool     // suppress user-facing replies, still delete/restrict
	RunCommands       bool     // enable -stats / -lb commands

	// Storage
	DBPath string // SQLite path

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Admin API
	Admin AdminConfig

	// Observability
	OTEL OTELConfig
}

// IsModerated reports whether channelID is in the moderated set.
func (c Config) IsModerated(channelID string) bool {
	for _, id := range c.ModeratedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Platform
		Token:      getenv("TOKEN", ""),
		GatewayURL: getenv("GATEWAY_URL", "wss://gateway.example.chat/v1"),
		APIBaseURL: getenv("API_BASE_URL", "https://api.example.chat/v1"),

		// Moderation
		ModeratedChannels: splitCSV(getenv("MODERATED_CHANNELS", "")),
		SilentMode:        getbool("SILENT_MODE", false),
		RunCommands:       getbool("RUN_COMMANDS", true),

		// Storage
		DBPath: getenv("DB_PATH", "main.db"),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Admin API
		Admin: AdminConfig{
			Addr:      getenv("ADMIN_ADDR", ""),
			GinMode:   strings.ToLower(getenv("GIN_MODE", "release")),
			RateRPS:   getfloat("ADMIN_RATE_RPS", 5.0),
			RateBurst: getint("ADMIN_RATE_BURST", 10),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "r9kbot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.Admin.GinMode {
	case "debug", "release", "test":
	default:
		cfg.Admin.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return cfg, errors.New("TOKEN must not be empty")
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return cfg, errors.New("GATEWAY_URL must not be empty")
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return cfg, errors.New("API_BASE_URL must not be empty")
	}
	if len(cfg.ModeratedChannels) == 0 {
		return cfg, errors.New("MODERATED_CHANNELS must list at least one channel id")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Admin.RateRPS < 0 {
		return cfg, errors.New("ADMIN_RATE_RPS must be >= 0")
	}
	if cfg.Admin.RateBurst < 1 {
		return cfg, errors.New("ADMIN_RATE_BURST must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
