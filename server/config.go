package server

import "fmt"

// Config holds HTTP surface parameters.
type Config struct {
	Host  string `mapstructure:"host" json:"host,omitempty"`
	Port  int    `mapstructure:"port" json:"port,omitempty"`
	Debug bool   `mapstructure:"debug" json:"debug,omitempty"`

	// AllowedOrigins lists CORS origins; "*" allows everything.
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins,omitempty"`

	// RateLimit is a request budget ("50/hour") applied per
	// client IP to the answer endpoint. Empty disables limiting.
	RateLimit string `mapstructure:"rate_limit" json:"rate_limit,omitempty"`

	// RedisAddr, when set, moves the rate-limit counters to redis so
	// replicas share one budget. Empty keeps them in process memory.
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr,omitempty"`
}

// DefaultConfig returns the default HTTP configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		AllowedOrigins: []string{"*"},
		RateLimit:      "50/hour",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Host != "" {
		c.Host = source.Host
	}
	if source.Port > 0 {
		c.Port = source.Port
	}
	if source.Debug {
		c.Debug = true
	}
	if len(source.AllowedOrigins) > 0 {
		c.AllowedOrigins = source.AllowedOrigins
	}
	if source.RateLimit != "" {
		c.RateLimit = source.RateLimit
	}
	if source.RedisAddr != "" {
		c.RedisAddr = source.RedisAddr
	}
}

// Addr returns the host:port bind address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
