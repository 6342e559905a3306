// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Identity source modes.
const (
	AuthModeTrustedHeader = "trusted-header"
	AuthModeBearer        = "bearer"
	AuthModeDev           = "dev"
)

// AuthConfig holds identity resolution configuration.
type AuthConfig struct {
	Mode       string // identity source: trusted-header (default), bearer, dev
	JWTSecret  string // HS256 shared secret, required for bearer mode
	AdminGroup string // forwarded group name that grants admin (default "admin")
}

// Validate checks that the auth configuration is internally consistent.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeTrustedHeader, AuthModeDev:
	case AuthModeBearer:
		if a.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=bearer")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (want trusted-header, bearer, or dev)", a.Mode)
	}
	return nil
}

// GraphConfig holds the static query guard ceilings.
type GraphConfig struct {
	MaxQueryDepth int // deepest allowed selection nesting (default 5)
	MaxQueryCost  int // largest allowed estimated field count (default 10000)
}

// Config holds the configuration for the HTTP API.
type Config struct {
	DBPath     string // path to the SQLite data file (default "itemvault.sqlite")
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Auth holds identity source configuration.
	Auth AuthConfig

	// Graph holds the query guard ceilings.
	Graph GraphConfig

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

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:     os.Getenv("DB_PATH"),
		ListenAddr: os.Getenv("LISTEN_ADDR"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		Env:        os.Getenv("ENV"),
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
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Auth config
	cfg.Auth = AuthConfig{
		Mode:       strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE"))),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		AdminGroup: os.Getenv("AUTH_ADMIN_GROUP"),
	}

	// Graph guard ceilings
	if v := os.Getenv("GRAPH_MAX_QUERY_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.MaxQueryDepth = n
		}
	}
	if v := os.Getenv("GRAPH_MAX_QUERY_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.MaxQueryCost = n
		}
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "itemvault.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
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
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthModeTrustedHeader
	}
	if cfg.Auth.AdminGroup == "" {
		cfg.Auth.AdminGroup = "admin"
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	if cfg.Auth.Mode == AuthModeDev {
		cfg.Warnings = append(cfg.Warnings, "AUTH_MODE=dev resolves every request to a fixed identity — do not expose this instance")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.Auth.Mode == AuthModeDev {
			return nil, fmt.Errorf("AUTH_MODE=dev is not allowed in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
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
