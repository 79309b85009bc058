package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Mirror    MirrorConfig    `koanf:"mirror"`
	Alert     AlertConfig     `koanf:"alert"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
	// PublicURL is the externally reachable base URL, used for the
	// log links embedded in report documents.
	PublicURL string `koanf:"public_url"`
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

type TelemetryConfig struct {
	// Environment names the deployment (prod, staging, ...); the
	// analytic dataset is telemetry_{environment}.
	Environment   string `koanf:"environment"`
	DefaultRegion string `koanf:"default_region"`
}

// MirrorConfig configures the Redis stream sink. An empty address
// falls back to the process-log sink.
type MirrorConfig struct {
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	StreamMaxLen  int64  `koanf:"stream_max_len"`
}

// AlertConfig configures the operator notification channel. An empty
// webhook URL disables alerting.
type AlertConfig struct {
	WebhookURL string `koanf:"webhook_url"`
}

// Dataset returns the analytic dataset name for this deployment.
func (c TelemetryConfig) Dataset() string {
	return "telemetry_" + c.Environment
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	if strings.TrimSpace(c.Telemetry.Environment) == "" {
		return fmt.Errorf("telemetry.environment is required")
	}
	if strings.ContainsAny(c.Telemetry.Environment, " .\"") {
		return fmt.Errorf("invalid telemetry.environment %q", c.Telemetry.Environment)
	}
	if strings.TrimSpace(c.Telemetry.DefaultRegion) == "" {
		return fmt.Errorf("telemetry.default_region is required")
	}

	if c.Mirror.StreamMaxLen < 0 {
		return fmt.Errorf("mirror.stream_max_len must be >= 0")
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.max_body_size_mb":  1,
		"server.mode":              "release",
		"server.public_url":        "http://localhost:8080",
		"database.dsn":             "",
		"database.max_open_conns":  25,
		"database.max_idle_conns":  25,
		"telemetry.environment":    "dev",
		"telemetry.default_region": "asia-southeast1",
		"mirror.redis_addr":        "",
		"mirror.redis_password":    "",
		"mirror.redis_db":          0,
		"mirror.stream_max_len":    100000,
		"alert.webhook_url":        "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("LOGLENS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "LOGLENS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
