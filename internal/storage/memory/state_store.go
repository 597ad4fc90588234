// Package memory provides in-memory store implementations: the default
// non-durable state store and an audit ring for tests and one-shot runs.
package memory

import (
	"context"
	"sync"

	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/storage"
)

// StateStore is the in-memory implementation of storage.StateStore.
// It is the default: the radar does not require restart durability
// unless configured with a database DSN.
type StateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenState
}

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{data: make(map[string]*domain.TokenState)}
}

// Compile-time interface check.
var _ storage.StateStore = (*StateStore)(nil)

// GetSeen retrieves the state for a mint. Returns ErrNotFound for
// mints never seen before.
func (s *StateStore) GetSeen(_ context.Context, mint string) (*domain.TokenState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[mint]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *state
	return &cp, nil
}

// UpsertSeen creates or updates a mint's state, preserving FirstSeenAt
// and AlertedAt from any existing record.
func (s *StateStore) UpsertSeen(_ context.Context, state *domain.TokenState) error {
	if state == nil || state.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *state
	if existing, ok := s.data[state.Mint]; ok {
		cp.FirstSeenAt = existing.FirstSeenAt
		if existing.AlertedAt > cp.AlertedAt {
			cp.AlertedAt = existing.AlertedAt
		}
	}
	s.data[state.Mint] = &cp
	return nil
}

// HasAlerted returns the last alert time for a mint.
func (s *StateStore) HasAlerted(_ context.Context, mint string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[mint]
	if !ok || state.AlertedAt == 0 {
		return 0, false, nil
	}
	return state.AlertedAt, true, nil
}

// RecordAlert marks the mint as alerted at the given time.
func (s *StateStore) RecordAlert(_ context.Context, mint string, at int64) error {
	if mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.data[mint]
	if !ok {
		state = &domain.TokenState{Mint: mint, FirstSeenAt: at, LastSeenAt: at}
		s.data[mint] = state
	}
	state.AlertedAt = at
	return nil
}

// Ping implements storage.StateStore; the in-memory store is always up.
func (s *StateStore) Ping(_ context.Context) error {
	return nil
}
