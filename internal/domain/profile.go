package domain

import "errors"

// Factor names a scoring input. Each factor has its own normalization
// curve in the scoring engine; the weight profile only decides how much
// each normalized sub-score contributes.
type Factor string

const (
	FactorAgeRecency     Factor = "age_recency"
	FactorMomentum       Factor = "momentum"
	FactorLiquidityDepth Factor = "liquidity_depth"
	FactorVolumeActivity Factor = "volume_activity"
	FactorHolderSpread   Factor = "holder_spread"
	FactorSourceOverlap  Factor = "source_overlap"
)

// Factors lists all scoring factors in a fixed order.
var Factors = []Factor{
	FactorAgeRecency,
	FactorMomentum,
	FactorLiquidityDepth,
	FactorVolumeActivity,
	FactorHolderSpread,
	FactorSourceOverlap,
}

// ErrZeroWeights indicates a profile whose weights sum to zero; such a
// profile cannot be normalized and the session must fail fast.
var ErrZeroWeights = errors.New("weight profile: weights sum to zero")

// WeightProfile maps factors to weight fractions. Exactly one profile
// is active per cycle; profiles are swappable between cycles but never
// partially applied mid-cycle.
type WeightProfile struct {
	Name    string
	Weights map[Factor]float64
}

// Normalized returns a copy of the profile whose weights sum to 1.0.
// Negative weights are treated as zero. Returns ErrZeroWeights when the
// total is zero, which the caller must treat as fatal at startup.
func (p WeightProfile) Normalized() (WeightProfile, error) {
	total := 0.0
	for _, w := range p.Weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return WeightProfile{}, ErrZeroWeights
	}

	out := WeightProfile{
		Name:    p.Name,
		Weights: make(map[Factor]float64, len(p.Weights)),
	}
	for f, w := range p.Weights {
		if w <= 0 {
			continue
		}
		out.Weights[f] = w / total
	}
	return out, nil
}

// Weight returns the weight for a factor, zero if absent.
func (p WeightProfile) Weight(f Factor) float64 {
	return p.Weights[f]
}
