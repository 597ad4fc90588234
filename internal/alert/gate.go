package alert

import (
	"context"
	"time"

	"solana-token-radar/internal/storage"
)

// Gate enforces the cooldown window in front of any sink. A mint
// alerted less than the window ago is suppressed even if its score
// rose, unless its risk classification improved out of an excluded
// state since the last cycle.
type Gate struct {
	store  storage.StateStore
	window time.Duration
}

func NewGate(store storage.StateStore, window time.Duration) *Gate {
	return &Gate{store: store, window: window}
}

// Allow reports whether a qualifying candidate may be delivered at
// the given time. riskImproved marks a mint whose previous cycle state
// was excluded and whose current assessment is not.
func (g *Gate) Allow(ctx context.Context, mint string, now int64, riskImproved bool) (bool, error) {
	alertedAt, ok, err := g.store.HasAlerted(ctx, mint)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	elapsed := time.Duration(now-alertedAt) * time.Millisecond
	if elapsed >= g.window {
		return true, nil
	}
	return riskImproved, nil
}
