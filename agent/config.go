package agent

import "time"

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 60 * time.Second
)

// Config holds backend provider initialization parameters.
type Config struct {
	Provider string        `mapstructure:"provider" json:"provider,omitempty"`
	APIKey   string        `mapstructure:"api_key" json:"api_key,omitempty"`
	Model    string        `mapstructure:"model" json:"model,omitempty"`
	BaseURL  string        `mapstructure:"base_url" json:"base_url,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Model:    defaultModel,
		BaseURL:  defaultBaseURL,
		Timeout:  defaultTimeout,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
}
