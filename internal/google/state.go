package google

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStateTTL bounds how long an issued anti-forgery state token
// stays valid.
const DefaultStateTTL = 10 * time.Minute

// StateStore is a TTL-bounded set of OAuth anti-forgery state tokens.
// A token is issued when the auth flow starts and consumed exactly once
// by the callback; expired tokens are swept on every new issue.
type StateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewStateStore creates a state store with the given TTL. A zero ttl
// falls back to DefaultStateTTL.
func NewStateStore(ttl time.Duration, logger *slog.Logger) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{
		states: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Issue creates a new state token and records its issue time. Expired
// tokens are garbage-collected on each issue.
func (s *StateStore) Issue() string {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, issued := range s.states {
		if now.Sub(issued) > s.ttl {
			delete(s.states, token)
		}
	}
	s.states[state] = now

	s.logger.Debug("issued oauth state token", "pending", len(s.states))
	return state
}

// Consume validates and removes a state token. It returns false for
// unknown, already-consumed, or expired tokens.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)

	return s.now().Sub(issued) <= s.ttl
}
