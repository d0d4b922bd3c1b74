package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateIssueAndConsume(t *testing.T) {
	store := NewStateStore(time.Minute, nil)

	state := store.Issue()
	require.NotEmpty(t, state)

	assert.True(t, store.Consume(state))
	assert.False(t, store.Consume(state), "state tokens are one-shot")
}

func TestStateConsumeUnknown(t *testing.T) {
	store := NewStateStore(time.Minute, nil)
	assert.False(t, store.Consume("never-issued"))
}

func TestStateExpiry(t *testing.T) {
	store := NewStateStore(10*time.Minute, nil)

	current := time.Now()
	store.now = func() time.Time { return current }

	state := store.Issue()

	current = current.Add(11 * time.Minute)
	assert.False(t, store.Consume(state), "expired state must not validate")
}

func TestStateSweepOnIssue(t *testing.T) {
	store := NewStateStore(10*time.Minute, nil)

	current := time.Now()
	store.now = func() time.Time { return current }

	stale := store.Issue()
	current = current.Add(11 * time.Minute)

	// Issuing a new token garbage-collects the expired one.
	fresh := store.Issue()

	store.mu.Lock()
	_, staleKept := store.states[stale]
	pending := len(store.states)
	store.mu.Unlock()

	assert.False(t, staleKept)
	assert.Equal(t, 1, pending)
	assert.True(t, store.Consume(fresh))
}

func TestStateTokensAreUnique(t *testing.T) {
	store := NewStateStore(time.Minute, nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		state := store.Issue()
		require.False(t, seen[state], "state tokens must be unique")
		seen[state] = true
	}
}
