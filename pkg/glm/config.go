package glm

import "time"

// DefaultBaseURL is the public model API endpoint.
const DefaultBaseURL = "https://open.bigmodel.cn/api/paas/v3/model-api"

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "chatglm_turbo"

// Config holds configuration for the GLM adapter.
type Config struct {
	// APIKey is the credential in "id.secret" form. Required.
	APIKey string

	// BaseURL is the model API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the model name used to build the invoke URL.
	// Defaults to DefaultModel.
	Model string

	// Timeout for non-streaming HTTP requests. Defaults to 120s.
	// Streaming requests ignore it; the context controls their lifetime.
	Timeout time.Duration

	// TokenTTL is the validity window of signed request tokens.
	// Defaults to 1 hour.
	TokenTTL time.Duration

	// Temperature is the default sampling temperature (optional).
	Temperature *float64

	// TopP is the default nucleus sampling value (optional).
	TopP *float64
}

// DefaultConfig returns a Config for the given API key with all defaults
// filled in.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		Model:    DefaultModel,
		Timeout:  120 * time.Second,
		TokenTTL: 1 * time.Hour,
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 1 * time.Hour
	}
}
