package scoring

import "math"

// Curve parameters controlling per-factor normalization. All curves map
// a raw attribute into [0, 1]; a missing attribute contributes 0 to its
// factor rather than failing the candidate.
type Curves struct {
	// AgeHalfLife is the token age at which the recency sub-score
	// decays to 0.5. Seconds.
	AgeHalfLife float64

	// MomentumCeiling is the 1h price change (fraction) past which the
	// momentum sub-score saturates at 1.
	MomentumCeiling float64

	// LiquidityTargetUSD is the pooled liquidity considered "deep
	// enough" for a full liquidity sub-score.
	LiquidityTargetUSD float64

	// VolumeReferenceUSD is the 24h volume yielding a full volume
	// sub-score.
	VolumeReferenceUSD float64

	// MaxSources is the number of configured adapters, used to scale
	// the source-overlap confidence factor.
	MaxSources int
}

// DefaultCurves returns curve parameters tuned for fresh Solana listings.
func DefaultCurves() Curves {
	return Curves{
		AgeHalfLife:        6 * 3600, // 6h
		MomentumCeiling:    0.5,      // +50% in 1h saturates
		LiquidityTargetUSD: 50_000,
		VolumeReferenceUSD: 250_000,
		MaxSources:         3,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ageRecency decays from 1 toward 0 as the token ages.
func (c Curves) ageRecency(ageSeconds float64) float64 {
	if ageSeconds < 0 || c.AgeHalfLife <= 0 {
		return 0
	}
	return math.Exp(-math.Ln2 * ageSeconds / c.AgeHalfLife)
}

// momentum grows linearly with positive 1h price change and saturates
// at the configured ceiling. Negative momentum scores 0.
func (c Curves) momentum(change float64) float64 {
	if c.MomentumCeiling <= 0 {
		return 0
	}
	return clamp01(change / c.MomentumCeiling)
}

// liquidityDepth is log-scaled: the difference between $1k and $10k of
// liquidity matters far more than between $90k and $100k.
func (c Curves) liquidityDepth(liquidityUSD float64) float64 {
	if liquidityUSD < 0 || c.LiquidityTargetUSD <= 0 {
		return 0
	}
	return clamp01(math.Log1p(liquidityUSD) / math.Log1p(c.LiquidityTargetUSD))
}

// volumeActivity is log-scaled against the reference volume.
func (c Curves) volumeActivity(volumeUSD float64) float64 {
	if volumeUSD < 0 || c.VolumeReferenceUSD <= 0 {
		return 0
	}
	return clamp01(math.Log1p(volumeUSD) / math.Log1p(c.VolumeReferenceUSD))
}

// holderSpread rewards wide distribution: a token whose top holders own
// the whole supply scores 0, fully dispersed supply scores 1.
func (c Curves) holderSpread(topHolderPct float64) float64 {
	return clamp01(1 - topHolderPct)
}

// sourceOverlap converts source cardinality into a confidence factor:
// a single-source candidate scores 0, one confirmed by every configured
// adapter scores 1.
func (c Curves) sourceOverlap(sources int) float64 {
	if c.MaxSources <= 1 {
		return 0
	}
	return clamp01(float64(sources-1) / float64(c.MaxSources-1))
}
