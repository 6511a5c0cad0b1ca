package tutor

import (
	"github.com/homework-ai/tutor/agent"
	"github.com/homework-ai/tutor/session"
)

// Config holds initialization parameters for the engine's subsystems. Each
// section delegates to that subsystem's config-driven constructor.
type Config struct {
	Session session.Config `mapstructure:"session" json:"session"`
	Backend agent.Config   `mapstructure:"backend" json:"backend"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Session: session.DefaultConfig(),
		Backend: agent.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Session.Merge(&source.Session)
	c.Backend.Merge(&source.Backend)
}
