package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load assembles the configuration from layered sources: built-in
// defaults, then an optional YAML file, then GLMBRIDGE_* environment
// variables, then _file secret references. The result is validated
// before it is returned.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := findConfigFile(configPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		// Fields absent from the YAML keep their default values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// findConfigFile resolves which config file to load. An explicit path
// wins, then GLMBRIDGE_CONFIG, then well-known locations. An empty
// return means run on defaults and environment alone.
func findConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("GLMBRIDGE_CONFIG"); envPath != "" {
		return envPath
	}
	for _, path := range []string{"glmbridge.yaml", "/etc/glmbridge/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GLMBRIDGE_API_KEY"); v != "" {
		cfg.GLM.APIKey = v
	}
	if v := os.Getenv("GLMBRIDGE_BASE_URL"); v != "" {
		cfg.GLM.BaseURL = v
	}
	if v := os.Getenv("GLMBRIDGE_MODEL"); v != "" {
		cfg.GLM.Model = v
	}
	if v := os.Getenv("GLMBRIDGE_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GLM.TokenTTL = d
		}
	}
	if v := os.Getenv("GLMBRIDGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GLM.Timeout = d
		}
	}
	if v := os.Getenv("GLMBRIDGE_HISTORY"); v != "" {
		cfg.History.Type = v
	}
	if v := os.Getenv("GLMBRIDGE_HISTORY_DSN"); v != "" {
		cfg.History.Postgres.DSN = v
	}
	if v := os.Getenv("GLMBRIDGE_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = v
	}
}

// resolveFileReferences fills value fields from their _file companions.
// A _file reference is only consulted when the inline value is unset, so
// an environment override always wins over a mounted secret.
func resolveFileReferences(cfg *Config) error {
	if cfg.GLM.APIKeyFile != "" && cfg.GLM.APIKey == "" {
		val, err := readSecretFile(cfg.GLM.APIKeyFile)
		if err != nil {
			return fmt.Errorf("glm.api_key_file: %w", err)
		}
		cfg.GLM.APIKey = val
	}

	if cfg.History.Postgres.DSNFile != "" && cfg.History.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.History.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("history.postgres.dsn_file: %w", err)
		}
		cfg.History.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
