package memory

import (
	"context"
	"errors"
	"testing"

	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/storage"
)

const testMint = "So11111111111111111111111111111111111111112"

func fp(v float64) *float64 { return &v }

func TestStateStore_GetSeenNotFound(t *testing.T) {
	s := NewStateStore()
	_, err := s.GetSeen(context.Background(), testMint)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStateStore_UpsertPreservesFirstSeen(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	if err := s.UpsertSeen(ctx, &domain.TokenState{
		Mint: testMint, FirstSeenAt: 1000, LastSeenAt: 1000, LastScore: fp(40), LastRisk: domain.RiskLow,
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := s.UpsertSeen(ctx, &domain.TokenState{
		Mint: testMint, FirstSeenAt: 9000, LastSeenAt: 9000, LastScore: fp(70), LastRisk: domain.RiskSafe,
	}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	state, err := s.GetSeen(ctx, testMint)
	if err != nil {
		t.Fatalf("GetSeen failed: %v", err)
	}
	if state.FirstSeenAt != 1000 {
		t.Errorf("FirstSeenAt = %d, want original 1000", state.FirstSeenAt)
	}
	if state.LastSeenAt != 9000 {
		t.Errorf("LastSeenAt = %d, want 9000", state.LastSeenAt)
	}
	if state.LastScore == nil || *state.LastScore != 70 {
		t.Errorf("LastScore = %v, want 70", state.LastScore)
	}
}

func TestStateStore_AlertBookkeeping(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	if _, ok, _ := s.HasAlerted(ctx, testMint); ok {
		t.Error("fresh store claims an alert happened")
	}

	if err := s.RecordAlert(ctx, testMint, 5000); err != nil {
		t.Fatalf("RecordAlert failed: %v", err)
	}
	at, ok, err := s.HasAlerted(ctx, testMint)
	if err != nil || !ok {
		t.Fatalf("HasAlerted = %v, %v, %v", at, ok, err)
	}
	if at != 5000 {
		t.Errorf("alertedAt = %d, want 5000", at)
	}

	// Upsert after an alert must not lose the alert time.
	if err := s.UpsertSeen(ctx, &domain.TokenState{Mint: testMint, FirstSeenAt: 1, LastSeenAt: 6000}); err != nil {
		t.Fatalf("UpsertSeen failed: %v", err)
	}
	if at, ok, _ := s.HasAlerted(ctx, testMint); !ok || at != 5000 {
		t.Errorf("alert lost after upsert: %v, %v", at, ok)
	}
}

func TestStateStore_InvalidInput(t *testing.T) {
	s := NewStateStore()
	if err := s.UpsertSeen(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil upsert: %v", err)
	}
	if err := s.RecordAlert(context.Background(), "", 1); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty mint alert: %v", err)
	}
}

func TestAuditStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewAuditStore()

	records := []*domain.AuditRecord{
		{CycleID: "c1", CycleAt: 1000, Mint: "zzz", Status: domain.AuditStatusRiskFiltered, Reason: "risk UNKNOWN"},
		{CycleID: "c1", CycleAt: 1000, Mint: "aaa", Status: domain.AuditStatusAlerted, Score: fp(88)},
		{CycleID: "c2", CycleAt: 2000, Mint: "aaa", Status: domain.AuditStatusCooldown},
	}
	if err := s.InsertRecords(ctx, records); err != nil {
		t.Fatalf("InsertRecords failed: %v", err)
	}

	got, err := s.GetByCycle(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByCycle failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Mint != "aaa" || got[1].Mint != "zzz" {
		t.Errorf("records not ordered by mint: %s, %s", got[0].Mint, got[1].Mint)
	}
	if got[0].Score == nil || *got[0].Score != 88 {
		t.Errorf("score = %v, want 88", got[0].Score)
	}
}

func TestAuditStore_CapacityEviction(t *testing.T) {
	s := NewAuditStore()
	s.capacity = 5

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		err := s.InsertRecords(ctx, []*domain.AuditRecord{
			{CycleID: "old", CycleAt: int64(i), Mint: testMint, Status: domain.AuditStatusScored},
		})
		if err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) != 5 {
		t.Errorf("retained %d records, want 5", len(s.records))
	}
}
