// Package config loads process configuration from a YAML file with
// environment-variable overrides. Payment credentials live in the settings
// store, not here; config carries only boot-time values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no path is given explicitly.
const DefaultConfigPath = "config.yaml"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host    string `yaml:"host"`     // Listen address.
	Port    int    `yaml:"port"`     // Listen port.
	BaseURL string `yaml:"base-url"` // Public base URL for redirect targets.
}

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // Postgres/MySQL/SQLite DSN; dialect is auto-detected.
}

// JWTConfig holds admin token settings.
type JWTConfig struct {
	Secret        string `yaml:"secret"`         // HS256 signing secret.
	ExpiryMinutes int    `yaml:"expiry-minutes"` // Token lifetime in minutes.
}

// Expiry returns the token lifetime as a duration.
func (c JWTConfig) Expiry() time.Duration {
	minutes := c.ExpiryMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// LogConfig holds logging output settings.
type LogConfig struct {
	Level      string `yaml:"level"`       // logrus level name.
	File       string `yaml:"file"`        // Rotating log file path; empty logs to stdout only.
	MaxSizeMB  int    `yaml:"max-size"`    // Rotation size threshold in MB.
	MaxBackups int    `yaml:"max-backups"` // Rotated files to retain.
	MaxAgeDays int    `yaml:"max-age"`     // Days to retain rotated files.
}

// BootstrapConfig holds the seeded admin account credentials.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin-username"` // Bootstrap admin login name.
	AdminPassword string `yaml:"admin-password"` // Bootstrap admin password, hashed before storage.
}

// StripeConfig holds processor endpoint settings. API keys are settings rows.
type StripeConfig struct {
	BaseURL string `yaml:"base-url"` // Override for the API endpoint; empty means production.
}

// Config is the full process configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Stripe    StripeConfig    `yaml:"stripe"`
}

// ResolveConfigPath picks the config file path: the explicit argument wins,
// then CHECKOUT_CONFIG, then the default.
func ResolveConfigPath(explicit string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv("CHECKOUT_CONFIG")); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load reads the config file when present, then applies environment
// overrides and defaults. A missing file is not an error: a fully
// env-configured deployment carries no YAML.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errDecode := yaml.Unmarshal(data, cfg); errDecode != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errDecode)
		}
	case os.IsNotExist(errRead):
		// Env-only configuration.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("config: jwt secret is required (set jwt.secret or JWT_SECRET)")
	}
	return cfg, nil
}

// applyEnvOverrides maps well-known environment variables onto the config.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "HOST")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.BaseURL, "APP_BASE_URL")
	setString(&cfg.Database.DSN, "DATABASE_DSN", "DATABASE_URL")
	setString(&cfg.JWT.Secret, "JWT_SECRET", "JWT_SECRET_KEY")
	setInt(&cfg.JWT.ExpiryMinutes, "JWT_EXPIRY_MINUTES")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")
	setString(&cfg.Bootstrap.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.Bootstrap.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.Stripe.BaseURL, "STRIPE_API_BASE")
}

// applyDefaults fills unset fields with working defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:checkout.db"
	}
	if cfg.JWT.ExpiryMinutes == 0 {
		cfg.JWT.ExpiryMinutes = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Bootstrap.AdminUsername == "" {
		cfg.Bootstrap.AdminUsername = "admin"
	}
}

// setString overrides target with the first non-empty env var among keys.
func setString(target *string, keys ...string) {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*target = value
			return
		}
	}
}

// setInt overrides target with the first parseable env var among keys.
func setInt(target *int, keys ...string) {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			continue
		}
		parsed, errParse := strconv.Atoi(value)
		if errParse == nil {
			*target = parsed
			return
		}
	}
}
