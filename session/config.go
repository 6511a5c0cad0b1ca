package session

import (
	"fmt"
	"time"
)

const defaultMaxHistory = 5

// Config holds session store initialization parameters.
type Config struct {
	// MaxHistory bounds each session's message count. Once an append
	// would exceed it, the oldest messages are evicted first.
	MaxHistory int `mapstructure:"max_history_length" json:"max_history_length,omitempty"`

	// PinInstruction exempts the first message of a session (the seeded
	// instruction prompt) from eviction. Off by default: historically the
	// instruction slides out of context like any other message.
	PinInstruction bool `mapstructure:"pin_instruction" json:"pin_instruction,omitempty"`

	// IdleTTL enables eviction of sessions with no activity for this
	// duration. Zero disables the sweep and sessions accumulate for the
	// process lifetime.
	IdleTTL time.Duration `mapstructure:"idle_ttl" json:"idle_ttl,omitempty"`
}

// DefaultConfig returns the default session store configuration.
func DefaultConfig() Config {
	return Config{MaxHistory: defaultMaxHistory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.MaxHistory > 0 {
		c.MaxHistory = source.MaxHistory
	}
	if source.PinInstruction {
		c.PinInstruction = true
	}
	if source.IdleTTL > 0 {
		c.IdleTTL = source.IdleTTL
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max_history_length must be positive, got %d", c.MaxHistory)
	}
	if c.IdleTTL < 0 {
		return fmt.Errorf("idle_ttl must not be negative, got %s", c.IdleTTL)
	}
	return nil
}
