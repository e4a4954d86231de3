package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// glm.api_key is required and must have the "id.secret" form.
	if c.GLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("glm.api_key is required"))
	} else if !strings.Contains(c.GLM.APIKey, ".") {
		errs = append(errs, fmt.Errorf("glm.api_key must have the form \"id.secret\""))
	}

	// glm.model must be set (a default always fills it).
	if c.GLM.Model == "" {
		errs = append(errs, fmt.Errorf("glm.model is required"))
	}

	// history.type must be a known value.
	switch c.History.Type {
	case "none", "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("history.type must be \"none\", \"memory\", or \"postgres\", got %q", c.History.Type))
	}

	// If history.type is "postgres", DSN or DSNFile must be set.
	if c.History.Type == "postgres" {
		if c.History.Postgres.DSN == "" && c.History.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("history.postgres.dsn or history.postgres.dsn_file is required when history.type is \"postgres\""))
		}
	}

	// metrics.listen must be set when metrics are enabled.
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, fmt.Errorf("metrics.listen is required when metrics.enabled is true"))
	}

	return errors.Join(errs...)
}
