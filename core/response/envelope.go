// Package response defines the answer envelope returned to API callers and
// the strict parser for the generative backend's structured output.
package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty levels the backend may assign to a question. A null
// difficulty_level marks non-questions and ambiguous inputs.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"

	// DifficultyUnclear appears only on error envelopes produced by the
	// orchestrator, never by the backend schema.
	DifficultyUnclear = "Unclear"
)

// QuestionTypeError tags envelopes produced by the orchestrator's error
// path. Backend-produced envelopes carry subject tags ("math", "science",
// ...) that the service passes through without interpretation.
const QuestionTypeError = "Error"

// Envelope is the uniform response object returned for every answered
// question. Success and error variants share the same shape; IsError
// distinguishes them. RequestID and SessionID are injected by the
// orchestrator after parsing and are never expected from the backend.
type Envelope struct {
	Greeting        string   `json:"greeting"`
	QuestionType    string   `json:"question_type,omitempty"`
	SolutionSteps   []string `json:"solution_steps"`
	FinalAnswer     string   `json:"final_answer"`
	DifficultyLevel *string  `json:"difficulty_level"`
	ClosingNote     string   `json:"closing_note"`
	RequestID       string   `json:"request_id,omitempty"`
	SessionID       string   `json:"session_id,omitempty"`
}

// IsError reports whether the envelope came from the orchestrator's error
// path rather than a successful backend round trip.
func (e *Envelope) IsError() bool {
	return e.QuestionType == QuestionTypeError
}

// Parse decodes raw backend text into an Envelope and enforces the answer
// schema: greeting, solution_steps, final_answer, and closing_note are
// required; difficulty_level must be Easy, Medium, Hard, or null.
//
// The backend is instructed to emit a single JSON object, but models
// occasionally wrap it in a markdown fence; Parse strips one before
// decoding. Any other deviation is an error — callers treat it the same as
// a failed backend invocation and do not retry.
func Parse(raw string) (*Envelope, error) {
	trimmed := stripFence(strings.TrimSpace(raw))

	dec := json.NewDecoder(strings.NewReader(trimmed))
	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse answer envelope: %w", err)
	}

	if env.Greeting == "" {
		return nil, fmt.Errorf("answer envelope missing required field %q", "greeting")
	}
	if env.SolutionSteps == nil {
		return nil, fmt.Errorf("answer envelope missing required field %q", "solution_steps")
	}
	if env.FinalAnswer == "" {
		return nil, fmt.Errorf("answer envelope missing required field %q", "final_answer")
	}
	if env.ClosingNote == "" {
		return nil, fmt.Errorf("answer envelope missing required field %q", "closing_note")
	}

	if env.DifficultyLevel != nil {
		switch *env.DifficultyLevel {
		case DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			return nil, fmt.Errorf("invalid difficulty_level %q", *env.DifficultyLevel)
		}
	}

	return &env, nil
}

// NewError builds the fixed error envelope returned for orchestrator-level
// failures. It is returned to the API boundary with HTTP 200, never thrown.
func NewError(message string, steps ...string) *Envelope {
	if len(steps) == 0 {
		steps = []string{"An error occurred.", "Please try again."}
	}
	unclear := DifficultyUnclear
	return &Envelope{
		Greeting:        "Hello! I'm here to assist you!",
		QuestionType:    QuestionTypeError,
		SolutionSteps:   steps,
		FinalAnswer:     message,
		DifficultyLevel: &unclear,
		ClosingNote:     "No worries, let's try again! I'm here to help!",
	}
}

// stripFence removes a single surrounding markdown code fence, with or
// without a json language tag.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
