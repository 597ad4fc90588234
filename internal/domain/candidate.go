package domain

import "sort"

// Candidate is the merged, cycle-scoped view of one token across all
// reporting sources. It lives for one cycle; only its identity-keyed
// summary outlives the cycle via the state store.
type Candidate struct {
	Mint       string              // canonical identity, primary key
	Sources    map[string]struct{} // adapters that reported this token this cycle
	Merged     Attributes          // per-attribute values chosen by the merge rule
	ObservedAt int64               // most recent ObservedAt among contributing observations

	// Assessment is nil until the security assessor has run for this cycle.
	Assessment *SecurityAssessment

	// Score is the composite conviction score in [0, 100], nil when the
	// candidate was filtered before scoring.
	Score *float64
}

// SourceCount returns the number of distinct sources that reported the
// candidate this cycle. Overlap cardinality is itself a confidence signal.
func (c *Candidate) SourceCount() int {
	return len(c.Sources)
}

// SourceNames returns the reporting sources in sorted order.
func (c *Candidate) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReportedBy checks whether the given adapter reported this candidate.
func (c *Candidate) ReportedBy(source string) bool {
	_, ok := c.Sources[source]
	return ok
}
