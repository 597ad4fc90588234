package domain

// TokenState is the identity-keyed summary of a candidate that outlives
// its cycle: first/last sighting, last score, last risk verdict, and
// the alert bookkeeping behind the cooldown window.
type TokenState struct {
	Mint        string
	FirstSeenAt int64 // ms, first cycle that merged this mint
	LastSeenAt  int64 // ms, most recent cycle that merged this mint
	LastScore   *float64
	LastRisk    RiskLevel

	// Excluded records whether the mint was risk-filtered the last time
	// it was seen. A transition from excluded to acceptable is the one
	// case allowed to bypass the alert cooldown.
	Excluded bool

	// AlertedAt is the time of the last emitted alert, 0 if never.
	AlertedAt int64
}
