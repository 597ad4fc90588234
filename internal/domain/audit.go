package domain

// Candidate outcome statuses recorded in the cycle audit trail. Every
// candidate considered in a cycle lands in exactly one of these, so
// silent exclusion is impossible to miss downstream.
const (
	AuditStatusAlerted      = "alerted"       // passed all gates, delivered to the sink
	AuditStatusCooldown     = "cooldown"      // qualified but suppressed by the cooldown window
	AuditStatusRiskFiltered = "risk_filtered" // excluded by the security policy, never scored
	AuditStatusInvalidMint  = "invalid_mint"  // observation dropped before merge
	AuditStatusScored       = "scored"        // scored but below the alert threshold
)

// AuditRecord is one candidate's outcome within one cycle, keyed by
// (CycleID, Mint).
type AuditRecord struct {
	CycleID      string
	CycleAt      int64 // ms, cycle start
	Mint         string
	Sources      []string
	Merged       Attributes
	Risk         RiskLevel // empty when never assessed
	DealBreakers []string
	Score        *float64 // nil when filtered before scoring
	Status       string
	Reason       string // human-readable filter reason, empty for alerted/scored
}
