package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Admin    AdminConfig
	Redirect RedirectConfig
	App      AppConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// DatabaseConfig holds click storage configuration. An empty URL disables
// persistence: the service still redirects, it just stops recording.
type DatabaseConfig struct {
	URL              string        `envconfig:"DATABASE_URL"`
	MaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns         int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	ConnectTimeout   time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	StatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"15s"`
	IdleTxTimeout    time.Duration `envconfig:"DB_IDLE_TX_TIMEOUT" default:"10s"`
}

// Enabled reports whether a storage backend is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// Validate validates the database configuration.
// Pool settings are only checked when a URL is configured.
func (c *DatabaseConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns < 0 {
		return fmt.Errorf("min connections cannot be negative")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.StatementTimeout <= 0 {
		return fmt.Errorf("statement timeout must be positive")
	}
	if c.IdleTxTimeout <= 0 {
		return fmt.Errorf("idle transaction timeout must be positive")
	}
	return nil
}

// AdminConfig holds the shared secret for the admin surface.
type AdminConfig struct {
	Secret string `envconfig:"ADMIN_SECRET" required:"true"`
}

// Validate validates the admin configuration.
func (c *AdminConfig) Validate() error {
	if strings.TrimSpace(c.Secret) == "" {
		return fmt.Errorf("admin secret cannot be empty")
	}
	return nil
}

// RedirectConfig holds destination validation and rate limiting knobs.
type RedirectConfig struct {
	AllowedHosts []string      `envconfig:"ALLOWED_HOSTS"`
	RateLimit    int           `envconfig:"RATE_LIMIT" default:"120"`
	RateWindow   time.Duration `envconfig:"RATE_WINDOW" default:"60s"`
}

// Validate validates the redirect configuration.
func (c *RedirectConfig) Validate() error {
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive")
	}
	for _, h := range c.AllowedHosts {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("allowed hosts cannot contain empty entries")
		}
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (Do .env loading in cmd/server/main.go for dev, not here.)
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load Database config: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Database config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Admin); err != nil {
		return nil, fmt.Errorf("failed to load Admin config: %w", err)
	}
	if err := cfg.Admin.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Admin config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Redirect); err != nil {
		return nil, fmt.Errorf("failed to load Redirect config: %w", err)
	}
	if err := cfg.Redirect.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Redirect config: %w", err)
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}

	return cfg, nil
}
