package alert

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes qualifying candidates as structured log lines. It is
// the default sink when no external delivery channel is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

var _ Sink = (*LogSink)(nil)

func (s *LogSink) Deliver(ctx context.Context, events []Event) error {
	for _, ev := range events {
		entry := s.log.Info().
			Str("cycle_id", ev.CycleID).
			Str("mint", ev.Mint).
			Float64("score", ev.Score).
			Strs("sources", ev.Sources).
			Int64("at", ev.At)
		if ev.Assessment != nil {
			entry = entry.Str("risk", string(ev.Assessment.Level))
			if len(ev.Assessment.DealBreakers) > 0 {
				entry = entry.Strs("deal_breakers", ev.Assessment.DealBreakers)
			}
		}
		if ev.Merged.LiquidityUSD != nil {
			entry = entry.Float64("liquidity_usd", *ev.Merged.LiquidityUSD)
		}
		if ev.Merged.Volume24hUSD != nil {
			entry = entry.Float64("volume_24h_usd", *ev.Merged.Volume24hUSD)
		}
		entry.Msg("token alert")
	}
	return nil
}
