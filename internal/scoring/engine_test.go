package scoring

import (
	"errors"
	"math"
	"testing"

	"solana-token-radar/internal/domain"
)

const testMint = "So11111111111111111111111111111111111111112"

func fp(v float64) *float64 { return &v }

func fullProfile() domain.WeightProfile {
	return domain.WeightProfile{
		Name: "balanced",
		Weights: map[domain.Factor]float64{
			domain.FactorAgeRecency:     0.20,
			domain.FactorMomentum:       0.20,
			domain.FactorLiquidityDepth: 0.20,
			domain.FactorVolumeActivity: 0.15,
			domain.FactorHolderSpread:   0.15,
			domain.FactorSourceOverlap:  0.10,
		},
	}
}

func richCandidate() *domain.Candidate {
	return &domain.Candidate{
		Mint:    testMint,
		Sources: map[string]struct{}{"dexscreener": {}, "birdeye": {}},
		Merged: domain.Attributes{
			AgeSeconds:    fp(3600),
			PriceChange1h: fp(0.30),
			LiquidityUSD:  fp(25_000),
			Volume24hUSD:  fp(120_000),
			TopHolderPct:  fp(0.35),
		},
	}
}

func TestScore_Idempotent(t *testing.T) {
	engine, err := NewEngine(DefaultCurves(), fullProfile())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	c := richCandidate()
	first := engine.Score(c)
	for i := 0; i < 20; i++ {
		if got := engine.Score(c); got != first {
			t.Fatalf("iteration %d: score %v != %v", i, got, first)
		}
	}
}

func TestScore_WithinRange(t *testing.T) {
	engine, err := NewEngine(DefaultCurves(), fullProfile())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	candidates := []*domain.Candidate{
		richCandidate(),
		{Mint: testMint, Sources: map[string]struct{}{"dexscreener": {}}},
		{
			Mint:    testMint,
			Sources: map[string]struct{}{"a": {}, "b": {}, "c": {}, "d": {}},
			Merged: domain.Attributes{
				AgeSeconds:    fp(0),
				PriceChange1h: fp(99),
				LiquidityUSD:  fp(1e9),
				Volume24hUSD:  fp(1e9),
				TopHolderPct:  fp(0),
			},
		},
	}
	for i, c := range candidates {
		score := engine.Score(c)
		if score < 0 || score > ScoreScale {
			t.Errorf("candidate %d: score %v outside [0, %v]", i, score, ScoreScale)
		}
	}
}

func TestScore_RescaledWeightsUnchanged(t *testing.T) {
	p := fullProfile()
	scaled := domain.WeightProfile{Name: p.Name, Weights: map[domain.Factor]float64{}}
	for f, w := range p.Weights {
		scaled.Weights[f] = w * 42.0
	}

	e1, err := NewEngine(DefaultCurves(), p)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	e2, err := NewEngine(DefaultCurves(), scaled)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	c := richCandidate()
	if s1, s2 := e1.Score(c), e2.Score(c); math.Abs(s1-s2) > 1e-9 {
		t.Errorf("rescaled profile changed score: %v vs %v", s1, s2)
	}
}

func TestScore_MissingAttributesContributeZero(t *testing.T) {
	engine, err := NewEngine(DefaultCurves(), fullProfile())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	full := richCandidate()
	partial := richCandidate()
	partial.Merged.LiquidityUSD = nil
	partial.Merged.TopHolderPct = nil

	bFull := engine.ScoreWithBreakdown(full)
	bPartial := engine.ScoreWithBreakdown(partial)

	if _, ok := bPartial.SubScores[domain.FactorLiquidityDepth]; ok {
		t.Error("missing liquidity should not produce a sub-score entry")
	}
	if bPartial.Score >= bFull.Score {
		t.Errorf("dropping positive factors should lower the score: %v >= %v", bPartial.Score, bFull.Score)
	}
	if bPartial.Score < 0 {
		t.Errorf("partial candidate must still score, got %v", bPartial.Score)
	}
}

func TestScore_SourceOverlapConfidence(t *testing.T) {
	engine, err := NewEngine(DefaultCurves(), domain.WeightProfile{
		Name:    "overlap-only",
		Weights: map[domain.Factor]float64{domain.FactorSourceOverlap: 1},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	single := &domain.Candidate{Mint: testMint, Sources: map[string]struct{}{"a": {}}}
	double := &domain.Candidate{Mint: testMint, Sources: map[string]struct{}{"a": {}, "b": {}}}
	triple := &domain.Candidate{Mint: testMint, Sources: map[string]struct{}{"a": {}, "b": {}, "c": {}}}

	if got := engine.Score(single); got != 0 {
		t.Errorf("single-source overlap score = %v, want 0", got)
	}
	if s2, s3 := engine.Score(double), engine.Score(triple); !(s2 > 0 && s3 > s2) {
		t.Errorf("overlap score not increasing: 2 sources %v, 3 sources %v", s2, s3)
	}
	if got := engine.Score(triple); got != ScoreScale {
		t.Errorf("full overlap score = %v, want %v", got, ScoreScale)
	}
}

func TestNewEngine_ZeroWeightsFatal(t *testing.T) {
	_, err := NewEngine(DefaultCurves(), domain.WeightProfile{Name: "broken"})
	if !errors.Is(err, domain.ErrZeroWeights) {
		t.Errorf("expected ErrZeroWeights, got %v", err)
	}
}

func TestCurves_Shapes(t *testing.T) {
	c := DefaultCurves()

	if got := c.ageRecency(0); got != 1 {
		t.Errorf("ageRecency(0) = %v, want 1", got)
	}
	if got := c.ageRecency(c.AgeHalfLife); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ageRecency(halfLife) = %v, want 0.5", got)
	}
	if got := c.momentum(-0.2); got != 0 {
		t.Errorf("negative momentum = %v, want 0", got)
	}
	if got := c.momentum(c.MomentumCeiling * 3); got != 1 {
		t.Errorf("momentum past ceiling = %v, want saturated 1", got)
	}
	if got := c.liquidityDepth(c.LiquidityTargetUSD * 10); got != 1 {
		t.Errorf("liquidity past target = %v, want 1", got)
	}
	if got := c.holderSpread(1.0); got != 0 {
		t.Errorf("fully concentrated holderSpread = %v, want 0", got)
	}
}
