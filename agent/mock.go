package agent

import (
	"context"
	"sync"

	"github.com/homework-ai/tutor/core/protocol"
)

// defaultMockAnswer is a well-formed answer envelope so a mock-backed
// service behaves end to end without a credential.
const defaultMockAnswer = `{"greeting":"Hi there!","question_type":"general","solution_steps":["This is a canned answer from the mock backend."],"final_answer":"Mock answer.","difficulty_level":null,"closing_note":"Keep going!"}`

// Mock is a scripted Agent for tests and credential-less local runs. It
// records every conversation it receives; tests use CallCount to verify
// the orchestrator short-circuited without invoking the backend.
type Mock struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]protocol.Message
}

// NewMock creates a Mock that replays the given responses in order,
// repeating the last one when exhausted. With no responses it serves a
// fixed well-formed answer.
func NewMock(responses ...string) *Mock {
	return &Mock{responses: responses}
}

// FailWith makes every subsequent Generate call return err.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Generate records the conversation and returns the next scripted response.
func (m *Mock) Generate(ctx context.Context, conversation []protocol.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]protocol.Message, len(conversation))
	copy(snapshot, conversation)
	m.calls = append(m.calls, snapshot)

	if m.err != nil {
		return "", m.err
	}

	if len(m.responses) == 0 {
		return defaultMockAnswer, nil
	}
	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// CallCount returns how many Generate calls were made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastConversation returns the conversation from the most recent call, or
// nil if none were made.
func (m *Mock) LastConversation() []protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
