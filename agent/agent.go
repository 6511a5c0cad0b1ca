// Package agent provides the generative backend boundary. The orchestrator
// sees one operation — turn a conversation into raw text — and everything
// behind it (transport, decoding parameters, structured-output schema) is a
// provider concern.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/homework-ai/tutor/core/protocol"
)

var (
	// ErrMissingAPIKey is returned when a provider requires a credential
	// and none was configured. Fatal at startup by design.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResponse is returned when the backend answered without any
	// usable candidate text.
	ErrEmptyResponse = errors.New("backend returned no candidates")
)

// Agent generates an answer for a conversation. The call is synchronous and
// bounded by the provider's configured timeout; failures are returned, never
// retried here.
type Agent interface {
	// Generate sends the ordered conversation to the backend and returns
	// its raw text output. The text is expected, but not guaranteed, to
	// be a JSON answer envelope; parsing is the caller's concern.
	Generate(ctx context.Context, conversation []protocol.Message) (string, error)
}

// New creates an Agent from configuration.
func New(cfg *Config) (Agent, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)

	switch merged.Provider {
	case ProviderGemini:
		if merged.APIKey == "" {
			return nil, fmt.Errorf("%w: provider %q", ErrMissingAPIKey, merged.Provider)
		}
		return NewGemini(merged), nil
	case ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, merged.Provider)
	}
}
