package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/storage"
)

// defaultAuditCapacity bounds retained records; oldest cycles are
// evicted first.
const defaultAuditCapacity = 10000

// AuditStore is an in-memory ring of cycle audit records.
type AuditStore struct {
	mu       sync.RWMutex
	records  []*domain.AuditRecord
	capacity int
}

// NewAuditStore creates an in-memory audit store with the default
// capacity.
func NewAuditStore() *AuditStore {
	return &AuditStore{capacity: defaultAuditCapacity}
}

// Compile-time interface check.
var _ storage.AuditStore = (*AuditStore)(nil)

// InsertRecords stores all records of one cycle.
func (s *AuditStore) InsertRecords(_ context.Context, records []*domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil || r.Mint == "" || r.CycleID == "" {
			return storage.ErrInvalidInput
		}
		cp := *r
		s.records = append(s.records, &cp)
	}
	if over := len(s.records) - s.capacity; over > 0 {
		s.records = s.records[over:]
	}
	return nil
}

// GetByCycle retrieves all records for a cycle ID, ordered by mint.
func (s *AuditStore) GetByCycle(_ context.Context, cycleID string) ([]*domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuditRecord
	for _, r := range s.records {
		if r.CycleID == cycleID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Mint < result[j].Mint
	})
	return result, nil
}
