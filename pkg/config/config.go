// Package config provides unified configuration for glmbridge.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (GLMBRIDGE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for glmbridge.
type Config struct {
	GLM     GLMConfig     `yaml:"glm"`
	History HistoryConfig `yaml:"history"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// GLMConfig holds backend adapter settings.
type GLMConfig struct {
	APIKey      string        `yaml:"api_key"`      // required, "id.secret" form
	APIKeyFile  string        `yaml:"api_key_file"` // _file variant for api_key
	BaseURL     string        `yaml:"base_url"`     // default: public endpoint
	Model       string        `yaml:"model"`        // default: "chatglm_turbo"
	Timeout     time.Duration `yaml:"timeout"`      // default: 120s
	TokenTTL    time.Duration `yaml:"token_ttl"`    // default: 1h
	Temperature *float64      `yaml:"temperature"`  // optional
	TopP        *float64      `yaml:"top_p"`        // optional
}

// HistoryConfig holds conversation transcript store settings.
type HistoryConfig struct {
	Type        string         `yaml:"type"`         // "none", "memory", or "postgres", default: "none"
	MaxSessions int            `yaml:"max_sessions"` // for memory store, default: 1000
	Postgres    PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// MetricsConfig holds the optional Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Listen  string `yaml:"listen"`  // default: ":9090"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		GLM: GLMConfig{
			BaseURL:  "https://open.bigmodel.cn/api/paas/v3/model-api",
			Model:    "chatglm_turbo",
			Timeout:  120 * time.Second,
			TokenTTL: 1 * time.Hour,
		},
		History: HistoryConfig{
			Type:        "none",
			MaxSessions: 1000,
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
	}
}
