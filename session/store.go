// Package session manages per-conversation message history for the tutor
// service. Sessions are process-lifetime only: they are created on demand,
// never persisted, and vanish on restart.
package session

import "github.com/homework-ai/tutor/core/protocol"

// Store maps opaque session identifiers to ordered, length-bounded message
// histories. Implementations must be safe for concurrent use, and
// operations on distinct sessions must not block one another.
type Store interface {
	// Create registers an empty history under a fresh unguessable
	// identifier and returns it. Identifiers double as bearer
	// capabilities, so the id space must make collisions and guessing
	// infeasible.
	Create() string

	// Exists reports whether the identifier is known. Pure lookup, no
	// side effects.
	Exists(id string) bool

	// Append adds a message to the session's history, evicting the
	// oldest messages once the configured bound is exceeded. Appending
	// to an unknown id is a logged no-op, not an error; callers that
	// need a guarantee must check Exists themselves.
	Append(id string, msg protocol.Message)

	// History returns a snapshot of the session's current history, or an
	// empty slice for unknown ids. The snapshot does not reflect later
	// mutations.
	History(id string) []protocol.Message
}

// New creates a Store from configuration. Currently always backed by
// process memory; the constructor exists so a shared backend could be
// swapped in without touching callers.
func New(cfg *Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewMemoryStore(*cfg), nil
}
