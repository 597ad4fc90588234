package security

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-token-radar/internal/domain"
)

// CycleCache wraps an Assessor so that each distinct mint is assessed
// at most once per cycle, however many sources reported it. A failed
// assessment is cached as RiskUnknown for the remainder of the cycle:
// the policy is exclusion, not retry-then-include.
//
// A fresh CycleCache is created per cycle; cycles are strictly
// sequential, so results never leak across cycle boundaries.
type CycleCache struct {
	assessor Assessor
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	results map[string]*domain.SecurityAssessment

	upstreamCalls int
}

// NewCycleCache creates a cache for one cycle.
func NewCycleCache(log zerolog.Logger, assessor Assessor) *CycleCache {
	return &CycleCache{
		assessor: assessor,
		log:      log,
		now:      time.Now,
		results:  make(map[string]*domain.SecurityAssessment),
	}
}

// Assess returns the cycle's assessment for the mint, calling upstream
// only on the first request. It always returns a usable assessment:
// upstream failure becomes RiskUnknown.
func (c *CycleCache) Assess(ctx context.Context, mint string) *domain.SecurityAssessment {
	c.mu.Lock()
	if cached, ok := c.results[mint]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	assessment, err := c.assessor.Assess(ctx, mint)
	if err != nil {
		c.log.Warn().Err(err).Str("mint", mint).Msg("assessment failed, treating as unknown")
		assessment = &domain.SecurityAssessment{
			Mint:       mint,
			Level:      domain.RiskUnknown,
			AssessedAt: c.now().UnixMilli(),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A concurrent call for the same mint may have landed first; keep
	// the stored result so every caller in the cycle sees one verdict.
	if existing, ok := c.results[mint]; ok {
		return existing
	}
	c.results[mint] = assessment
	c.upstreamCalls++
	return assessment
}

// UpstreamCalls reports how many assessments actually reached the
// provider this cycle.
func (c *CycleCache) UpstreamCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upstreamCalls
}
