package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homework-ai/tutor/core/protocol"
	"github.com/homework-ai/tutor/observability"
)

// Session store event types.
const (
	EventCreate     observability.EventType = "session.create"
	EventAppendMiss observability.EventType = "session.append.miss"
	EventSweep      observability.EventType = "session.sweep"
)

// history is the per-session record. Each history carries its own lock so
// concurrent requests against different sessions never contend.
type history struct {
	mu           sync.Mutex
	messages     []protocol.Message
	lastActivity time.Time
}

// MemoryStore is an in-memory Store. The top-level lock guards only the id
// map; message appends and snapshots take the per-session lock, which is
// never held across a backend call.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*history
	cfg      Config
	observer observability.Observer
}

// NewMemoryStore creates a MemoryStore with the given configuration.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*history),
		cfg:      cfg,
		observer: observability.Noop(),
	}
}

// SetObserver routes store events to the given observer. Must be called
// before the store is shared between goroutines.
func (s *MemoryStore) SetObserver(o observability.Observer) {
	if o != nil {
		s.observer = o
	}
}

// Create registers an empty history under a fresh UUIDv4 and returns the id.
// Random 128-bit identifiers keep both collision and guessing probability
// negligible, which matters because ids are bearer capabilities.
func (s *MemoryStore) Create() string {
	id := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	s.sessions[id] = &history{lastActivity: now}
	s.mu.Unlock()

	s.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventCreate,
		Level:     observability.LevelVerbose,
		Timestamp: now,
		Source:    "session.MemoryStore",
		Data:      map[string]any{"session_id": id},
	})

	return id
}

// Exists reports whether id is a known session.
func (s *MemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Append adds msg to the session's history and trims to the configured
// bound, oldest first. Unknown ids are logged and ignored.
func (s *MemoryStore) Append(id string, msg protocol.Message) {
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		s.observer.OnEvent(context.Background(), observability.Event{
			Type:      EventAppendMiss,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "session.MemoryStore",
			Data:      map[string]any{"session_id": id, "role": string(msg.Role)},
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	h.messages = s.trim(h.messages)
	h.lastActivity = time.Now()
}

// History returns a snapshot of the session's messages, empty for unknown
// ids. The returned slice shares no backing array with the store.
func (s *MemoryStore) History(id string) []protocol.Message {
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return []protocol.Message{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]protocol.Message, len(h.messages))
	copy(snapshot, h.messages)
	return snapshot
}

// trim enforces the history bound. With PinInstruction set the first
// message survives every eviction and the window applies to the rest.
func (s *MemoryStore) trim(msgs []protocol.Message) []protocol.Message {
	limit := s.cfg.MaxHistory
	if len(msgs) <= limit {
		return msgs
	}

	if s.cfg.PinInstruction && limit > 1 {
		kept := make([]protocol.Message, 0, limit)
		kept = append(kept, msgs[0])
		kept = append(kept, msgs[len(msgs)-(limit-1):]...)
		return kept
	}

	return msgs[len(msgs)-limit:]
}

// CleanupExpired removes sessions idle longer than the configured TTL and
// returns how many were removed. A zero TTL makes this a no-op.
func (s *MemoryStore) CleanupExpired() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}

	now := time.Now()
	removed := 0

	s.mu.Lock()
	for id, h := range s.sessions {
		h.mu.Lock()
		idle := now.Sub(h.lastActivity)
		h.mu.Unlock()
		if idle > s.cfg.IdleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.observer.OnEvent(context.Background(), observability.Event{
			Type:      EventSweep,
			Level:     observability.LevelInfo,
			Timestamp: now,
			Source:    "session.MemoryStore",
			Data:      map[string]any{"removed": removed},
		})
	}

	return removed
}

// Sweep runs CleanupExpired on the given interval until ctx is cancelled.
// Intended to run in its own goroutine when an idle TTL is configured.
func (s *MemoryStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

// Stats returns current session counts. "active" counts sessions within
// the idle TTL; with no TTL configured every session is active.
func (s *MemoryStore) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, h := range s.sessions {
		h.mu.Lock()
		idle := now.Sub(h.lastActivity)
		h.mu.Unlock()
		if s.cfg.IdleTTL <= 0 || idle <= s.cfg.IdleTTL {
			active++
		}
	}

	return map[string]int{
		"total":  len(s.sessions),
		"active": active,
	}
}
