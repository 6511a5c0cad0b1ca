package tutor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/homework-ai/tutor/agent"
	"github.com/homework-ai/tutor/core/protocol"
	"github.com/homework-ai/tutor/core/response"
	"github.com/homework-ai/tutor/observability"
	"github.com/homework-ai/tutor/session"
	"github.com/homework-ai/tutor/tutor"
)

const answer = `{"greeting":"Hi!","question_type":"math","solution_steps":["2 and 2 make 4."],"final_answer":"4","difficulty_level":"Easy","closing_note":"Keep practicing!"}`

// newEngine builds an engine over an in-memory store and a scripted
// backend, returning all three.
func newEngine(t *testing.T, cfg session.Config, responses ...string) (*tutor.Engine, *session.MemoryStore, *agent.Mock) {
	t.Helper()

	store := session.NewMemoryStore(cfg)
	backend := agent.NewMock(responses...)

	engineCfg := tutor.DefaultConfig()
	engineCfg.Backend.Provider = agent.ProviderMock

	eng, err := tutor.New(&engineCfg,
		tutor.WithStore(store),
		tutor.WithBackend(backend),
		tutor.WithObserver(observability.Noop()),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return eng, store, backend
}

func TestHandleQuestion_NoSessionID_CreatesSession(t *testing.T) {
	eng, store, _ := newEngine(t, session.DefaultConfig(), answer)

	env := eng.HandleQuestion(context.Background(), "", "What is 2+2?")

	if env.SessionID == "" {
		t.Fatal("envelope missing session_id")
	}
	if env.RequestID == "" {
		t.Fatal("envelope missing request_id")
	}
	if !store.Exists(env.SessionID) {
		t.Error("returned session id should exist in the store")
	}
	if env.IsError() {
		t.Errorf("got error envelope: %+v", env)
	}
	if env.FinalAnswer != "4" {
		t.Errorf("got final_answer %q, want %q", env.FinalAnswer, "4")
	}
}

func TestHandleQuestion_UnknownSessionID_BehavesLikeAbsent(t *testing.T) {
	eng, store, _ := newEngine(t, session.DefaultConfig(), answer, answer)

	env := eng.HandleQuestion(context.Background(), "not-a-real-session", "hi")

	if env.SessionID == "" || env.SessionID == "not-a-real-session" {
		t.Errorf("got session_id %q, want a freshly issued id", env.SessionID)
	}
	if !store.Exists(env.SessionID) {
		t.Error("effective session should exist")
	}
	if store.Exists("not-a-real-session") {
		t.Error("the unknown id itself must not be registered")
	}
}

func TestHandleQuestion_KnownSession_Reused(t *testing.T) {
	eng, _, _ := newEngine(t, session.Config{MaxHistory: 20}, answer, answer)

	first := eng.HandleQuestion(context.Background(), "", "What is 2+2?")
	second := eng.HandleQuestion(context.Background(), first.SessionID, "Explain again")

	if second.SessionID != first.SessionID {
		t.Errorf("follow-up changed session: got %q, want %q", second.SessionID, first.SessionID)
	}
	if second.RequestID == first.RequestID {
		t.Error("each request must get its own request_id")
	}
}

func TestHandleQuestion_SeedsInstructionPrompt(t *testing.T) {
	eng, store, backend := newEngine(t, session.Config{MaxHistory: 20}, answer)

	env := eng.HandleQuestion(context.Background(), "", "What is 2+2?")

	history := store.History(env.SessionID)
	if len(history) < 3 {
		t.Fatalf("got %d messages, want seed + question + answer", len(history))
	}
	if history[0].Role != protocol.RoleUser {
		t.Errorf("seed message role = %q, want user", history[0].Role)
	}
	if len(history[0].Content) < 100 {
		t.Error("seed message should carry the instruction prompt")
	}

	// The backend sees the seeded prompt as the first conversation turn.
	conv := backend.LastConversation()
	if len(conv) == 0 || conv[0].Content != history[0].Content {
		t.Error("conversation sent to backend should start with the instruction prompt")
	}
	if conv[len(conv)-1].Content != "What is 2+2?" {
		t.Errorf("conversation should end with the question, got %q", conv[len(conv)-1].Content)
	}
}

func TestHandleQuestion_EmptyQuestion_NoBackendCall(t *testing.T) {
	eng, store, backend := newEngine(t, session.DefaultConfig())
	id := eng.StartSession()

	env := eng.HandleQuestion(context.Background(), id, "")

	if !env.IsError() {
		t.Fatalf("got %+v, want an error envelope", env)
	}
	if env.FinalAnswer != "No question provided" {
		t.Errorf("got final_answer %q, want %q", env.FinalAnswer, "No question provided")
	}
	if env.DifficultyLevel == nil || *env.DifficultyLevel != response.DifficultyUnclear {
		t.Errorf("got difficulty %v, want Unclear", env.DifficultyLevel)
	}
	if backend.CallCount() != 0 {
		t.Errorf("backend called %d times, want 0", backend.CallCount())
	}

	// The rejected turn is still recorded for audit continuity.
	history := store.History(id)
	last := history[len(history)-1]
	if last.Content != "No question provided" {
		t.Errorf("got last message %q, want the placeholder", last.Content)
	}
}

func TestHandleQuestion_BackendFailure(t *testing.T) {
	eng, store, backend := newEngine(t, session.DefaultConfig())
	backend.FailWith(errors.New("connection refused"))

	env := eng.HandleQuestion(context.Background(), "", "What is 2+2?")

	if !env.IsError() {
		t.Fatal("backend failure should produce an error envelope")
	}
	if env.FinalAnswer != "API failure" {
		t.Errorf("got final_answer %q, want %q", env.FinalAnswer, "API failure")
	}

	history := store.History(env.SessionID)
	last := history[len(history)-1]
	if last.Role != protocol.RoleAssistant || last.Content != "Error: API failure" {
		t.Errorf("got last message %q/%q, want assistant failure marker", last.Role, last.Content)
	}
}

func TestHandleQuestion_ParseFailure(t *testing.T) {
	eng, store, _ := newEngine(t, session.DefaultConfig(), "I refuse to speak JSON.")

	env := eng.HandleQuestion(context.Background(), "", "What is 2+2?")

	if !env.IsError() {
		t.Fatal("unparseable backend output should produce an error envelope")
	}
	if env.FinalAnswer != "Failed to parse response" {
		t.Errorf("got final_answer %q, want %q", env.FinalAnswer, "Failed to parse response")
	}

	history := store.History(env.SessionID)
	last := history[len(history)-1]
	if last.Content != "Error: Failed to parse response" {
		t.Errorf("got last message %q, want parse failure marker", last.Content)
	}
}

func TestHandleQuestion_RecordsRawAnswer(t *testing.T) {
	eng, store, _ := newEngine(t, session.Config{MaxHistory: 20}, answer)

	env := eng.HandleQuestion(context.Background(), "", "What is 2+2?")

	history := store.History(env.SessionID)
	last := history[len(history)-1]
	if last.Role != protocol.RoleAssistant {
		t.Errorf("got role %q, want assistant", last.Role)
	}
	if last.Content != answer {
		t.Errorf("history should record the raw backend text:\ngot  %q\nwant %q", last.Content, answer)
	}
}

func TestHandleQuestion_TrimsFullSession(t *testing.T) {
	eng, store, _ := newEngine(t, session.Config{MaxHistory: 5},
		answer, answer, answer, answer, answer)

	id := eng.StartSession()
	for i := 0; i < 2; i++ {
		eng.HandleQuestion(context.Background(), id, fmt.Sprintf("question %d", i))
	}
	if got := len(store.History(id)); got != 5 {
		t.Fatalf("setup: got %d messages, want the store at capacity", got)
	}
	oldest := store.History(id)[0]

	eng.HandleQuestion(context.Background(), id, "one more")

	history := store.History(id)
	if len(history) != 5 {
		t.Errorf("got %d messages, want exactly 5", len(history))
	}
	if history[0] == oldest {
		t.Error("oldest message should have been evicted")
	}
}

func TestHistory_UnknownSession(t *testing.T) {
	eng, store, _ := newEngine(t, session.DefaultConfig())

	_, err := eng.History("nope")
	if !errors.Is(err, tutor.ErrUnknownSession) {
		t.Errorf("got err %v, want ErrUnknownSession", err)
	}
	// Lookup must not create the session as a side effect.
	if store.Exists("nope") {
		t.Error("History created a session")
	}
}

func TestHistory_KnownSession(t *testing.T) {
	eng, _, _ := newEngine(t, session.DefaultConfig(), answer)

	env := eng.HandleQuestion(context.Background(), "", "What is 2+2?")

	history, err := eng.History(env.SessionID)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) == 0 {
		t.Error("history should not be empty after an answered question")
	}
}

func TestNew_ConfigDriven(t *testing.T) {
	cfg := tutor.DefaultConfig()
	cfg.Backend.Provider = agent.ProviderMock

	eng, err := tutor.New(&cfg, tutor.WithObserver(observability.Noop()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	env := eng.HandleQuestion(context.Background(), "", "hello")
	if env.SessionID == "" {
		t.Error("engine built from config should answer questions")
	}
}

func TestNew_InvalidBackend(t *testing.T) {
	cfg := tutor.DefaultConfig()
	cfg.Backend.Provider = "nope"

	if _, err := tutor.New(&cfg); err == nil {
		t.Error("New should reject an unknown provider")
	}
}
