// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default worksheet titles in the source spreadsheet.
const (
	DefaultUsersWorksheet         = "USERS_MASTER"
	DefaultSubscriptionsWorksheet = "SUBSCRIPTIONS"
)

// Config holds the configuration for the analytics HTTP service.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Cache
	CacheTTL      time.Duration // snapshot freshness window; 0 means always refresh
	WarmSchedule  string        // cron spec for background cache warming; empty disables
	SourceTimeout time.Duration // per-fetch bound on the record source

	// Record source (Google Sheets)
	SpreadsheetID          string
	UsersWorksheet         string
	SubscriptionsWorksheet string
	ServiceAccountJSON     string // inline service account key JSON
	ServiceAccountB64      string // base64-encoded service account key JSON
	CredentialsFile        string // key file fallback (default "creds.json")

	// Column alias overrides (YAML); empty uses built-in defaults.
	AliasFile string

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Worksheets returns the dataset-key to worksheet-title mapping.
func (c *Config) Worksheets(usersKey, subscriptionsKey string) map[string]string {
	return map[string]string{
		usersKey:         c.UsersWorksheet,
		subscriptionsKey: c.SubscriptionsWorksheet,
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:             os.Getenv("LISTEN_ADDR"),
		LogLevel:               os.Getenv("LOG_LEVEL"),
		Env:                    os.Getenv("ENV"),
		WarmSchedule:           os.Getenv("CACHE_WARM_SCHEDULE"),
		SpreadsheetID:          os.Getenv("SHEET_ID"),
		UsersWorksheet:         os.Getenv("USERS_WORKSHEET"),
		SubscriptionsWorksheet: os.Getenv("SUBSCRIPTIONS_WORKSHEET"),
		ServiceAccountJSON:     os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountB64:      os.Getenv("GOOGLE_SERVICE_ACCOUNT_B64"),
		CredentialsFile:        os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		AliasFile:              os.Getenv("COLUMN_ALIAS_FILE"),
		CacheTTL:               600 * time.Second,
	}

	// TTL in whole seconds; 0 is a valid "always refresh" setting.
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("CACHE_TTL_SECONDS must be a non-negative integer, got %q", v)
		}
		cfg.CacheTTL = time.Duration(n) * time.Second
	}

	if v := os.Getenv("SOURCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SourceTimeout = d
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid SOURCE_TIMEOUT %q ignored", v))
		}
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.UsersWorksheet == "" {
		cfg.UsersWorksheet = DefaultUsersWorksheet
	}
	if cfg.SubscriptionsWorksheet == "" {
		cfg.SubscriptionsWorksheet = DefaultSubscriptionsWorksheet
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = "creds.json"
	}
	if cfg.SourceTimeout == 0 {
		cfg.SourceTimeout = 30 * time.Second
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("SHEET_ID must be set")
	}
	if cfg.ServiceAccountJSON == "" && cfg.ServiceAccountB64 == "" {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("no GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_B64 set — falling back to %s", cfg.CredentialsFile))
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
