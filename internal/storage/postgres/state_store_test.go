package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/storage"
	pgstore "solana-token-radar/internal/storage/postgres"
)

func ptr(v float64) *float64 { return &v }

func TestStateStore_UpsertAndGetSeen(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewStateStore(pool)
	ctx := context.Background()

	state := &domain.TokenState{
		Mint:        "So11111111111111111111111111111111111111112",
		FirstSeenAt: 1700000000000,
		LastSeenAt:  1700000000000,
		LastScore:   ptr(72.5),
		LastRisk:    domain.RiskLow,
	}

	err := store.UpsertSeen(ctx, state)
	require.NoError(t, err)

	retrieved, err := store.GetSeen(ctx, state.Mint)
	require.NoError(t, err)

	assert.Equal(t, state.Mint, retrieved.Mint)
	assert.Equal(t, state.FirstSeenAt, retrieved.FirstSeenAt)
	assert.Equal(t, state.LastSeenAt, retrieved.LastSeenAt)
	require.NotNil(t, retrieved.LastScore)
	assert.Equal(t, 72.5, *retrieved.LastScore)
	assert.Equal(t, domain.RiskLow, retrieved.LastRisk)
	assert.False(t, retrieved.Excluded)
	assert.Zero(t, retrieved.AlertedAt)
}

func TestStateStore_GetSeenNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewStateStore(pool)

	_, err := store.GetSeen(context.Background(), "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStateStore_UpsertPreservesFirstSeen(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewStateStore(pool)
	ctx := context.Background()
	mint := "So11111111111111111111111111111111111111112"

	err := store.UpsertSeen(ctx, &domain.TokenState{
		Mint:        mint,
		FirstSeenAt: 1700000000000,
		LastSeenAt:  1700000000000,
		LastRisk:    domain.RiskCritical,
		Excluded:    true,
	})
	require.NoError(t, err)

	err = store.UpsertSeen(ctx, &domain.TokenState{
		Mint:        mint,
		FirstSeenAt: 1700000600000,
		LastSeenAt:  1700000600000,
		LastScore:   ptr(64.0),
		LastRisk:    domain.RiskLow,
	})
	require.NoError(t, err)

	retrieved, err := store.GetSeen(ctx, mint)
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000000), retrieved.FirstSeenAt, "first seen must survive upserts")
	assert.Equal(t, int64(1700000600000), retrieved.LastSeenAt)
	assert.Equal(t, domain.RiskLow, retrieved.LastRisk)
	assert.False(t, retrieved.Excluded)
}

func TestStateStore_AlertBookkeeping(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewStateStore(pool)
	ctx := context.Background()
	mint := "So11111111111111111111111111111111111111112"

	_, ok, err := store.HasAlerted(ctx, mint)
	require.NoError(t, err)
	assert.False(t, ok, "unseen mint must not report an alert")

	err = store.RecordAlert(ctx, mint, 1700000300000)
	require.NoError(t, err)

	alertedAt, ok, err := store.HasAlerted(ctx, mint)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1700000300000), alertedAt)

	// An upsert without alert info must not clear the alert time.
	err = store.UpsertSeen(ctx, &domain.TokenState{
		Mint:        mint,
		FirstSeenAt: 1700000600000,
		LastSeenAt:  1700000600000,
		LastRisk:    domain.RiskLow,
	})
	require.NoError(t, err)

	alertedAt, ok, err = store.HasAlerted(ctx, mint)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1700000300000), alertedAt)
}

func TestStateStore_Ping(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewStateStore(pool)
	assert.NoError(t, store.Ping(context.Background()))
}
