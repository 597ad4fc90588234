// Package aggregate merges per-source token observations into canonical
// per-mint candidates within a single cycle.
package aggregate

import (
	"solana-token-radar/internal/domain"
)

// Priority is a static per-attribute source preference, highest first.
// When several sources report the same attribute for the same mint, the
// highest-ranked source wins; sources not listed rank below all listed
// ones. Ties fall back to the most recently observed value. Values are
// never averaged across sources: attribute semantics differ between
// providers (volume windows, liquidity definitions), so picking one
// source deterministically beats blending incompatible numbers.
type Priority map[domain.AttributeName][]string

// DefaultPriority encodes which provider has historically been most
// reliable per attribute. The ordering is a standing assumption, not a
// measured fact; revisit against provider reliability data.
func DefaultPriority() Priority {
	return Priority{
		domain.AttrPriceUSD:      {"birdeye", "dexscreener"},
		domain.AttrPriceChange1h: {"dexscreener", "birdeye"},
		domain.AttrVolume24hUSD:  {"dexscreener", "birdeye"},
		domain.AttrLiquidityUSD:  {"dexscreener", "birdeye"},
		domain.AttrMarketCapUSD:  {"birdeye", "dexscreener"},
		domain.AttrAgeSeconds:    {"pumpstream", "birdeye", "dexscreener"},
		domain.AttrTopHolderPct:  {"birdeye"},
	}
}

// Rejected records an observation dropped before merge, with the
// reason preserved for the cycle audit record.
type Rejected struct {
	Mint       string
	SourceName string
	Reason     string
}

// Merger merges observations under a fixed priority table.
type Merger struct {
	priority Priority
}

// NewMerger creates a Merger. A nil priority falls back to defaults.
func NewMerger(priority Priority) *Merger {
	if priority == nil {
		priority = DefaultPriority()
	}
	return &Merger{priority: priority}
}

// rank returns the preference rank of a source for an attribute.
// Lower is better; unlisted sources share the worst rank.
func (m *Merger) rank(attr domain.AttributeName, source string) int {
	order := m.priority[attr]
	for i, name := range order {
		if name == source {
			return i
		}
	}
	return len(order)
}

// Merge folds all observations of one cycle into per-mint candidates.
// Observations with malformed mint addresses are dropped and reported
// in the second return value. Two observations sharing a mint always
// produce exactly one candidate whose Sources is the set union of the
// reporting adapters.
func (m *Merger) Merge(observations []domain.TokenObservation) (map[string]*domain.Candidate, []Rejected) {
	candidates := make(map[string]*domain.Candidate)
	var rejected []Rejected

	// byMint keeps insertion grouping; per-attribute selection below is
	// order-independent, so concurrent adapters joining in any order
	// yield the same merge.
	byMint := make(map[string][]domain.TokenObservation)
	for _, obs := range observations {
		if err := domain.ValidateMint(obs.Mint); err != nil {
			rejected = append(rejected, Rejected{
				Mint:       obs.Mint,
				SourceName: obs.SourceName,
				Reason:     err.Error(),
			})
			continue
		}
		byMint[obs.Mint] = append(byMint[obs.Mint], obs)
	}

	for mint, group := range byMint {
		c := &domain.Candidate{
			Mint:    mint,
			Sources: make(map[string]struct{}, len(group)),
		}
		for _, obs := range group {
			c.Sources[obs.SourceName] = struct{}{}
			if obs.ObservedAt > c.ObservedAt {
				c.ObservedAt = obs.ObservedAt
			}
		}
		for _, attr := range domain.AttributeNames {
			c.Merged.Set(attr, m.selectValue(attr, group))
		}
		candidates[mint] = c
	}

	return candidates, rejected
}

// selectValue picks the winning value for one attribute among all
// observations of one mint: best priority rank first, most recent
// ObservedAt on a rank tie, lexically smallest source name as the
// final deterministic tiebreak.
func (m *Merger) selectValue(attr domain.AttributeName, group []domain.TokenObservation) *float64 {
	var (
		best       *float64
		bestRank   int
		bestAt     int64
		bestSource string
	)

	for _, obs := range group {
		v := obs.Attributes.Get(attr)
		if v == nil {
			continue
		}
		r := m.rank(attr, obs.SourceName)
		replace := false
		switch {
		case best == nil:
			replace = true
		case r < bestRank:
			replace = true
		case r == bestRank && obs.ObservedAt > bestAt:
			replace = true
		case r == bestRank && obs.ObservedAt == bestAt && obs.SourceName < bestSource:
			replace = true
		}
		if replace {
			val := *v
			best = &val
			bestRank = r
			bestAt = obs.ObservedAt
			bestSource = obs.SourceName
		}
	}

	return best
}
