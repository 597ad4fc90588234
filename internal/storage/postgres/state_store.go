package postgres

import (
	"context"
	"fmt"

	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/storage"
)

// StateStore implements storage.StateStore using PostgreSQL.
type StateStore struct {
	pool *Pool
}

// NewStateStore creates a new StateStore.
func NewStateStore(pool *Pool) *StateStore {
	return &StateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StateStore = (*StateStore)(nil)

// GetSeen retrieves the state for a mint. Returns ErrNotFound for
// mints never seen before.
func (s *StateStore) GetSeen(ctx context.Context, mint string) (*domain.TokenState, error) {
	query := `
		SELECT mint, first_seen_at, last_seen_at, last_score, last_risk, excluded, alerted_at
		FROM token_state
		WHERE mint = $1
	`

	var state domain.TokenState
	var risk string
	err := s.pool.QueryRow(ctx, query, mint).Scan(
		&state.Mint,
		&state.FirstSeenAt,
		&state.LastSeenAt,
		&state.LastScore,
		&risk,
		&state.Excluded,
		&state.AlertedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token state: %w", err)
	}
	state.LastRisk = domain.RiskLevel(risk)
	return &state, nil
}

// UpsertSeen creates or updates a mint's state. FirstSeenAt and
// alerted_at are preserved from the existing row on conflict.
func (s *StateStore) UpsertSeen(ctx context.Context, state *domain.TokenState) error {
	if state == nil || state.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_state (mint, first_seen_at, last_seen_at, last_score, last_risk, excluded, alerted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (mint) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			last_score   = EXCLUDED.last_score,
			last_risk    = EXCLUDED.last_risk,
			excluded     = EXCLUDED.excluded,
			alerted_at   = GREATEST(token_state.alerted_at, EXCLUDED.alerted_at)
	`

	_, err := s.pool.Exec(ctx, query,
		state.Mint,
		state.FirstSeenAt,
		state.LastSeenAt,
		state.LastScore,
		string(state.LastRisk),
		state.Excluded,
		state.AlertedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token state: %w", err)
	}
	return nil
}

// HasAlerted returns the last alert time for a mint.
func (s *StateStore) HasAlerted(ctx context.Context, mint string) (int64, bool, error) {
	query := `SELECT alerted_at FROM token_state WHERE mint = $1`

	var alertedAt int64
	err := s.pool.QueryRow(ctx, query, mint).Scan(&alertedAt)
	if err != nil {
		if isNotFoundError(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("query alert state: %w", err)
	}
	if alertedAt == 0 {
		return 0, false, nil
	}
	return alertedAt, true, nil
}

// RecordAlert marks the mint as alerted at the given time, creating the
// row when the mint has no state yet.
func (s *StateStore) RecordAlert(ctx context.Context, mint string, at int64) error {
	if mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_state (mint, first_seen_at, last_seen_at, last_risk, excluded, alerted_at)
		VALUES ($1, $2, $2, '', FALSE, $2)
		ON CONFLICT (mint) DO UPDATE SET alerted_at = EXCLUDED.alerted_at
	`

	if _, err := s.pool.Exec(ctx, query, mint, at); err != nil {
		return fmt.Errorf("record alert: %w", err)
	}
	return nil
}

// Ping verifies the store is reachable.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
