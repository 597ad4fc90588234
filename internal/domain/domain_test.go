package domain

import (
	"errors"
	"math"
	"testing"
)

const wsolMint = "So11111111111111111111111111111111111111112"

func TestValidateMint(t *testing.T) {
	if err := ValidateMint(wsolMint); err != nil {
		t.Errorf("valid mint rejected: %v", err)
	}
	if err := ValidateMint(""); err == nil {
		t.Error("empty mint accepted")
	}
	if err := ValidateMint("abc"); err == nil {
		t.Error("short mint accepted")
	}
	// 0, O, I, l are not in the base58 alphabet
	if err := ValidateMint("0OIl000000000000000000000000000000000000000"); err == nil {
		t.Error("non-base58 mint accepted")
	}
}

func TestNormalized(t *testing.T) {
	p := WeightProfile{
		Name: "test",
		Weights: map[Factor]float64{
			FactorMomentum:       3,
			FactorLiquidityDepth: 1,
		},
	}

	n, err := p.Normalized()
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}
	if got := n.Weight(FactorMomentum); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("momentum weight = %v, want 0.75", got)
	}
	if got := n.Weight(FactorLiquidityDepth); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("liquidity weight = %v, want 0.25", got)
	}

	total := 0.0
	for _, w := range n.Weights {
		total += w
	}
	if math.Abs(total-1.0) > 1e-12 {
		t.Errorf("normalized weights sum to %v, want 1.0", total)
	}
}

func TestNormalized_RescaleInvariant(t *testing.T) {
	base := map[Factor]float64{
		FactorAgeRecency:     0.4,
		FactorMomentum:       0.35,
		FactorVolumeActivity: 0.25,
	}
	scaled := make(map[Factor]float64, len(base))
	for f, w := range base {
		scaled[f] = w * 17.5
	}

	n1, err := WeightProfile{Name: "a", Weights: base}.Normalized()
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}
	n2, err := WeightProfile{Name: "a", Weights: scaled}.Normalized()
	if err != nil {
		t.Fatalf("Normalized failed: %v", err)
	}

	for _, f := range Factors {
		if math.Abs(n1.Weight(f)-n2.Weight(f)) > 1e-12 {
			t.Errorf("factor %s: %v != %v after rescale", f, n1.Weight(f), n2.Weight(f))
		}
	}
}

func TestNormalized_ZeroTotal(t *testing.T) {
	_, err := WeightProfile{Name: "empty"}.Normalized()
	if !errors.Is(err, ErrZeroWeights) {
		t.Errorf("expected ErrZeroWeights, got %v", err)
	}

	_, err = WeightProfile{
		Name:    "negative",
		Weights: map[Factor]float64{FactorMomentum: -1},
	}.Normalized()
	if !errors.Is(err, ErrZeroWeights) {
		t.Errorf("expected ErrZeroWeights for negative-only weights, got %v", err)
	}
}

func TestAcceptable(t *testing.T) {
	cases := []struct {
		name     string
		level    RiskLevel
		breakers []string
		tolerant bool
		want     bool
	}{
		{"safe", RiskSafe, nil, false, true},
		{"low", RiskLow, nil, false, true},
		{"medium", RiskMedium, nil, false, true},
		{"critical", RiskCritical, nil, false, false},
		{"critical tolerant", RiskCritical, nil, true, false},
		{"unknown", RiskUnknown, nil, false, false},
		{"unknown tolerant", RiskUnknown, nil, true, false},
		{"high default", RiskHigh, nil, false, false},
		{"high tolerant clean", RiskHigh, nil, true, true},
		{"high tolerant breakers", RiskHigh, []string{DealBreakerBlacklist}, true, false},
	}

	for _, tc := range cases {
		a := &SecurityAssessment{Mint: wsolMint, Level: tc.level, DealBreakers: tc.breakers}
		if got := a.Acceptable(tc.tolerant); got != tc.want {
			t.Errorf("%s: Acceptable = %v, want %v", tc.name, got, tc.want)
		}
	}

	var nilAssessment *SecurityAssessment
	if nilAssessment.Acceptable(true) {
		t.Error("nil assessment accepted")
	}
}
