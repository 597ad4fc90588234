// Package scoring computes composite conviction scores for merged
// candidates under a normalized weight profile.
package scoring

import (
	"fmt"

	"solana-token-radar/internal/domain"
)

// ScoreScale is the upper bound of the composite score range.
const ScoreScale = 100.0

// Engine turns a candidate's merged attributes into a composite score.
// Scoring is pure: the same candidate and profile always produce the
// same number, with no wall-clock or randomness involved. Anything
// time-dependent (age) must already be captured in the merged
// attributes at observation time.
type Engine struct {
	curves  Curves
	profile domain.WeightProfile
}

// NewEngine creates an Engine for one session. The profile is
// normalized once here; a zero-total profile is a fatal configuration
// error surfaced to the caller.
func NewEngine(curves Curves, profile domain.WeightProfile) (*Engine, error) {
	normalized, err := profile.Normalized()
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", profile.Name, err)
	}
	return &Engine{curves: curves, profile: normalized}, nil
}

// ProfileName returns the name of the active weight profile.
func (e *Engine) ProfileName() string {
	return e.profile.Name
}

// Breakdown carries per-factor sub-scores for one candidate, retained
// for audit records and operator output.
type Breakdown struct {
	SubScores map[domain.Factor]float64
	Score     float64
}

// Score computes the composite score in [0, ScoreScale].
func (e *Engine) Score(c *domain.Candidate) float64 {
	return e.ScoreWithBreakdown(c).Score
}

// ScoreWithBreakdown computes the composite score along with each
// factor's normalized sub-score. Missing attributes contribute a zero
// sub-score to their factor.
func (e *Engine) ScoreWithBreakdown(c *domain.Candidate) Breakdown {
	subs := map[domain.Factor]float64{
		domain.FactorSourceOverlap: e.curves.sourceOverlap(c.SourceCount()),
	}
	if v := c.Merged.AgeSeconds; v != nil {
		subs[domain.FactorAgeRecency] = e.curves.ageRecency(*v)
	}
	if v := c.Merged.PriceChange1h; v != nil {
		subs[domain.FactorMomentum] = e.curves.momentum(*v)
	}
	if v := c.Merged.LiquidityUSD; v != nil {
		subs[domain.FactorLiquidityDepth] = e.curves.liquidityDepth(*v)
	}
	if v := c.Merged.Volume24hUSD; v != nil {
		subs[domain.FactorVolumeActivity] = e.curves.volumeActivity(*v)
	}
	if v := c.Merged.TopHolderPct; v != nil {
		subs[domain.FactorHolderSpread] = e.curves.holderSpread(*v)
	}

	weighted := 0.0
	for _, f := range domain.Factors {
		weighted += e.profile.Weight(f) * subs[f]
	}

	return Breakdown{SubScores: subs, Score: weighted * ScoreScale}
}
