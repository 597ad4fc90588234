package domain

// RiskLevel classifies a token's security risk as reported by the
// external assessor. The set is closed so exclusion logic stays
// exhaustive; open-ended findings go into DealBreakers instead.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"

	// RiskUnknown covers both "assessor unreachable" and "token too new
	// to have data". Absence of a clean signal is never treated as safe.
	RiskUnknown RiskLevel = "UNKNOWN"
)

// String returns the string representation of RiskLevel.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid checks if the risk level is a known value.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskSafe, RiskLow, RiskMedium, RiskHigh, RiskCritical, RiskUnknown:
		return true
	}
	return false
}

// Excluded reports whether the level is an exclusion state on its own,
// regardless of deal-breakers or tolerance mode.
func (r RiskLevel) Excluded() bool {
	return r == RiskCritical || r == RiskUnknown
}

// Deal-breaker tags reported alongside a risk level.
const (
	DealBreakerBlacklist       = "blacklist_function"
	DealBreakerMintAuthority   = "mint_authority_active"
	DealBreakerFreezeAuthority = "freeze_authority_active"
	DealBreakerNotRenounced    = "ownership_not_renounced"
	DealBreakerProxyUpgrade    = "upgradeable_proxy"
)

// SecurityAssessment is the assessor's verdict for one mint, produced
// at most once per cycle per distinct mint.
type SecurityAssessment struct {
	Mint         string
	Level        RiskLevel
	DealBreakers []string
	AssessedAt   int64 // Unix timestamp in milliseconds
}

// Acceptable applies the fail-closed inclusion policy:
//   - Unknown and Critical are always excluded.
//   - High is excluded unless its deal-breaker list is empty and the
//     session runs in high-risk-tolerant mode.
//   - Everything else passes.
func (a *SecurityAssessment) Acceptable(highRiskTolerant bool) bool {
	if a == nil {
		return false
	}
	if a.Level.Excluded() {
		return false
	}
	if a.Level == RiskHigh {
		return highRiskTolerant && len(a.DealBreakers) == 0
	}
	return true
}
