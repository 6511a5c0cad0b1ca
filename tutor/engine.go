// Package tutor implements the conversation orchestrator: it turns one
// (session id, question) pair into one answer envelope, coordinating the
// session store and the generative backend.
package tutor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/homework-ai/tutor/agent"
	"github.com/homework-ai/tutor/core/protocol"
	"github.com/homework-ai/tutor/core/response"
	"github.com/homework-ai/tutor/observability"
	"github.com/homework-ai/tutor/session"
)

// Literal texts recorded in session history so later turns (and operators
// reading a transcript) see exactly what happened. Frontends match on them.
const (
	markerNoQuestion   = "No question provided"
	markerAPIFailure   = "Error: API failure"
	markerParseFailure = "Error: Failed to parse response"
)

// Option configures an Engine after config-driven initialization.
// Overrides replace config-created defaults; tests use them to inject
// doubles.
type Option func(*Engine)

// WithStore overrides the config-created session store.
func WithStore(s session.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithBackend overrides the config-created generative backend.
func WithBackend(a agent.Agent) Option {
	return func(e *Engine) { e.backend = a }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Engine orchestrates question answering over a session store and a
// generative backend. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	store    session.Store
	backend  agent.Agent
	observer observability.Observer
}

// New creates an Engine from configuration. Subsystems are initialized from
// their respective config sections; functional options applied afterwards
// can override any of them.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	store, err := session.New(&cfg.Session)
	if err != nil {
		return nil, err
	}

	backend, err := agent.New(&cfg.Backend)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:    store,
		backend:  backend,
		observer: observability.NewSlogObserver(slog.Default()),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// StartSession creates a session seeded with the instruction prompt as its
// first user-role message and returns the new id.
func (e *Engine) StartSession() string {
	id := e.store.Create()
	e.store.Append(id, protocol.NewMessage(protocol.RoleUser, instructionPrompt))

	e.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventSessionStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "tutor.Engine",
		Data:      map[string]any{"session_id": id},
	})

	return id
}

// SessionExists reports whether id names a live session.
func (e *Engine) SessionExists(id string) bool {
	return e.store.Exists(id)
}

// History returns a snapshot of a session's conversation. Unlike
// HandleQuestion, it never creates a session: unknown ids yield
// ErrUnknownSession.
func (e *Engine) History(id string) ([]protocol.Message, error) {
	if !e.store.Exists(id) {
		return nil, ErrUnknownSession
	}
	return e.store.History(id), nil
}

// HandleQuestion answers one student question within a session.
//
// An absent or unknown session id resolves to a fresh seeded session; the
// effective id is returned in the envelope so the client can continue the
// conversation. Orchestrator-level failures (empty question, backend or
// parse errors) come back as error envelopes, never as Go errors — the
// transport layer always has a well-formed object to serialize.
func (e *Engine) HandleQuestion(ctx context.Context, sessionID, question string) *response.Envelope {
	requestID := uuid.NewString()

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventQuestion,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "tutor.Engine",
		Data: map[string]any{
			"request_id":      requestID,
			"session_id":      sessionID,
			"question_length": len(question),
		},
	})

	if sessionID == "" || !e.store.Exists(sessionID) {
		sessionID = e.StartSession()
	}

	if question == "" {
		// Keep an audit trail of the rejected turn, then short-circuit
		// before the backend is ever involved.
		e.store.Append(sessionID, protocol.NewMessage(protocol.RoleUser, markerNoQuestion))

		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventInvalidQuestion,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "tutor.Engine",
			Data:      map[string]any{"request_id": requestID, "session_id": sessionID},
		})

		return e.finalize(response.NewError(markerNoQuestion,
			"It seems no question was provided.",
			"Please provide a valid homework question.",
		), requestID, sessionID)
	}

	e.store.Append(sessionID, protocol.NewMessage(protocol.RoleUser, question))

	// The conversation sent to the backend is exactly the post-trim
	// history, including the turn just appended. No lock is held across
	// the round trip, so concurrent requests on the same session may
	// interleave their turns.
	conversation := e.store.History(sessionID)

	raw, err := e.backend.Generate(ctx, conversation)
	if err != nil {
		e.store.Append(sessionID, protocol.NewMessage(protocol.RoleAssistant, markerAPIFailure))

		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventBackendError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "tutor.Engine",
			Data: map[string]any{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})

		return e.finalize(response.NewError("API failure",
			"Something went wrong while processing your question.",
			"Please try again later.",
		), requestID, sessionID)
	}

	env, err := response.Parse(raw)
	if err != nil {
		e.store.Append(sessionID, protocol.NewMessage(protocol.RoleAssistant, markerParseFailure))

		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventParseError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "tutor.Engine",
			Data: map[string]any{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})

		return e.finalize(response.NewError("Failed to parse response",
			"There was an issue processing the response.",
			"Please try again or rephrase your question.",
		), requestID, sessionID)
	}

	// Record the raw backend text, not a re-serialization, so subsequent
	// turns see byte-exact context.
	e.store.Append(sessionID, protocol.NewMessage(protocol.RoleAssistant, raw))

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventAnswer,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "tutor.Engine",
		Data: map[string]any{
			"request_id":    requestID,
			"session_id":    sessionID,
			"question_type": env.QuestionType,
		},
	})

	return e.finalize(env, requestID, sessionID)
}

func (e *Engine) finalize(env *response.Envelope, requestID, sessionID string) *response.Envelope {
	env.RequestID = requestID
	env.SessionID = sessionID
	return env
}
