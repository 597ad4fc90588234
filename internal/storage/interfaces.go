package storage

import (
	"context"

	"solana-token-radar/internal/domain"
)

// StateStore is the cross-cycle memory of tokens the radar has seen and
// alerted on. Cycles are strictly sequential, so implementations only
// need to be safe for concurrent reads within one cycle, never for
// overlapping cycles.
//
// A session must refuse to start without a reachable state store:
// without dedup and cooldown memory the no-duplicate-alert guarantee
// cannot hold.
type StateStore interface {
	// GetSeen retrieves the persisted state for a mint. Returns
	// ErrNotFound for mints never seen before.
	GetSeen(ctx context.Context, mint string) (*domain.TokenState, error)

	// UpsertSeen creates or updates a mint's state. FirstSeenAt is kept
	// from the existing record when one exists.
	UpsertSeen(ctx context.Context, state *domain.TokenState) error

	// HasAlerted returns the time of the last alert for a mint and
	// whether one was ever recorded.
	HasAlerted(ctx context.Context, mint string) (alertedAt int64, ok bool, err error)

	// RecordAlert marks the mint as alerted at the given time.
	RecordAlert(ctx context.Context, mint string, at int64) error

	// Ping verifies the store is reachable; called once at startup.
	Ping(ctx context.Context) error
}

// AuditStore receives the per-cycle record of every candidate
// considered, including filtered ones and the reason for filtering.
// Delivery failure must not disturb the cycle: callers log and move on.
type AuditStore interface {
	// InsertRecords stores all records of one cycle.
	InsertRecords(ctx context.Context, records []*domain.AuditRecord) error

	// GetByCycle retrieves all records for a cycle ID, ordered by mint.
	GetByCycle(ctx context.Context, cycleID string) ([]*domain.AuditRecord, error)
}
