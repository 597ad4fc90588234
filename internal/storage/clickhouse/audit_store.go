package clickhouse

import (
	"context"
	"fmt"

	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/storage"
)

// AuditStore persists per-cycle audit records in ClickHouse.
type AuditStore struct {
	conn *Conn
}

// NewAuditStore creates a ClickHouse-backed audit store.
func NewAuditStore(conn *Conn) *AuditStore {
	return &AuditStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AuditStore = (*AuditStore)(nil)

const insertAuditQuery = `
	INSERT INTO cycle_audit (
		cycle_id, cycle_at, mint, sources,
		price_usd, price_change_1h, volume_24h_usd, liquidity_usd,
		market_cap_usd, age_seconds, top_holder_pct,
		risk, deal_breakers, score, status, reason
	)`

// InsertRecords stores all records of one cycle in a single batch.
func (s *AuditStore) InsertRecords(ctx context.Context, records []*domain.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, insertAuditQuery)
	if err != nil {
		return fmt.Errorf("prepare audit batch: %w", err)
	}

	for _, rec := range records {
		if rec == nil {
			return fmt.Errorf("insert audit records: %w", storage.ErrInvalidInput)
		}
		sources := rec.Sources
		if sources == nil {
			sources = []string{}
		}
		breakers := rec.DealBreakers
		if breakers == nil {
			breakers = []string{}
		}
		err := batch.Append(
			rec.CycleID,
			rec.CycleAt,
			rec.Mint,
			sources,
			rec.Merged.PriceUSD,
			rec.Merged.PriceChange1h,
			rec.Merged.Volume24hUSD,
			rec.Merged.LiquidityUSD,
			rec.Merged.MarketCapUSD,
			rec.Merged.AgeSeconds,
			rec.Merged.TopHolderPct,
			string(rec.Risk),
			breakers,
			rec.Score,
			rec.Status,
			rec.Reason,
		)
		if err != nil {
			return fmt.Errorf("append audit record %s: %w", rec.Mint, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send audit batch: %w", err)
	}

	return nil
}

const selectByCycleQuery = `
	SELECT
		cycle_id, cycle_at, mint, sources,
		price_usd, price_change_1h, volume_24h_usd, liquidity_usd,
		market_cap_usd, age_seconds, top_holder_pct,
		risk, deal_breakers, score, status, reason
	FROM cycle_audit
	WHERE cycle_id = ?
	ORDER BY mint`

// GetByCycle retrieves all records for a cycle ID, ordered by mint.
func (s *AuditStore) GetByCycle(ctx context.Context, cycleID string) ([]*domain.AuditRecord, error) {
	rows, err := s.conn.Query(ctx, selectByCycleQuery, cycleID)
	if err != nil {
		return nil, fmt.Errorf("query cycle audit: %w", err)
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		var (
			rec  domain.AuditRecord
			risk string
		)
		err := rows.Scan(
			&rec.CycleID,
			&rec.CycleAt,
			&rec.Mint,
			&rec.Sources,
			&rec.Merged.PriceUSD,
			&rec.Merged.PriceChange1h,
			&rec.Merged.Volume24hUSD,
			&rec.Merged.LiquidityUSD,
			&rec.Merged.MarketCapUSD,
			&rec.Merged.AgeSeconds,
			&rec.Merged.TopHolderPct,
			&risk,
			&rec.DealBreakers,
			&rec.Score,
			&rec.Status,
			&rec.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Risk = domain.RiskLevel(risk)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, nil
}
