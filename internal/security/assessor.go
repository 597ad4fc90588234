// Package security integrates the external token risk assessor and
// applies the fail-closed inclusion policy: a candidate without a clean
// safety signal is excluded, never assumed fine.
package security

import (
	"context"

	"solana-token-radar/internal/domain"
)

// Assessor returns a risk classification for one mint. Implementations
// own their timeouts; errors are mapped to RiskUnknown by the caller,
// which is an exclusion state, not a retry signal.
type Assessor interface {
	Assess(ctx context.Context, mint string) (*domain.SecurityAssessment, error)
}

// AssessorFunc adapts a function to the Assessor interface.
type AssessorFunc func(ctx context.Context, mint string) (*domain.SecurityAssessment, error)

// Assess implements Assessor.
func (f AssessorFunc) Assess(ctx context.Context, mint string) (*domain.SecurityAssessment, error) {
	return f(ctx, mint)
}
