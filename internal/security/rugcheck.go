package security

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"solana-token-radar/internal/domain"
)

// RugCheckBaseURL is the default endpoint of the security provider.
const RugCheckBaseURL = "https://api.rugcheck.xyz"

// Default client behavior.
const (
	defaultAssessTimeout  = 8 * time.Second
	defaultBreakerTimeout = 30 * time.Second
)

// RugCheck queries a rugcheck-style report API for one mint at a time.
// A circuit breaker sits in front of the provider: when it is open,
// Assess fails immediately instead of burning the cycle deadline on a
// provider that is already known to be down. The caller maps any error
// to RiskUnknown.
type RugCheck struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
	now     func() time.Time
}

// RugCheckOption configures the client.
type RugCheckOption func(*RugCheck)

// WithTimeout sets the per-assessment HTTP timeout.
func WithTimeout(d time.Duration) RugCheckOption {
	return func(r *RugCheck) { r.http.Timeout = d }
}

// NewRugCheck creates the security provider client.
func NewRugCheck(log zerolog.Logger, baseURL string, opts ...RugCheckOption) *RugCheck {
	if baseURL == "" {
		baseURL = RugCheckBaseURL
	}
	r := &RugCheck{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultAssessTimeout},
		log:     log.With().Str("component", "rugcheck").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "rugcheck",
		Timeout: defaultBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	})

	return r
}

// reportSummary mirrors the provider's report payload.
type reportSummary struct {
	Score int `json:"score"`
	Risks []struct {
		Name  string `json:"name"`
		Level string `json:"level"` // info | warn | danger
	} `json:"risks"`
}

// dealBreakerNames maps provider risk names to the closed deal-breaker
// tags used by the exclusion policy.
var dealBreakerNames = map[string]string{
	"Blacklist":              domain.DealBreakerBlacklist,
	"Mint Authority Enabled": domain.DealBreakerMintAuthority,
	"Freeze Authority":       domain.DealBreakerFreezeAuthority,
	"Mutable Metadata":       domain.DealBreakerNotRenounced,
	"Upgradeable Program":    domain.DealBreakerProxyUpgrade,
}

// Assess implements Assessor.
func (r *RugCheck) Assess(ctx context.Context, mint string) (*domain.SecurityAssessment, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.fetchReport(ctx, mint)
	})
	if err != nil {
		return nil, err
	}
	report := result.(*reportSummary)

	assessment := &domain.SecurityAssessment{
		Mint:       mint,
		Level:      classify(report),
		AssessedAt: r.now().UnixMilli(),
	}
	for _, risk := range report.Risks {
		if risk.Level != "danger" {
			continue
		}
		if tag, ok := dealBreakerNames[risk.Name]; ok {
			assessment.DealBreakers = append(assessment.DealBreakers, tag)
		}
	}
	return assessment, nil
}

func (r *RugCheck) fetchReport(ctx context.Context, mint string) (*reportSummary, error) {
	url := fmt.Sprintf("%s/v1/tokens/%s/report/summary", r.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assess %s: %w", mint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Token too new for the provider: an explicit empty report, not
		// a provider fault. The sentinel score classifies as Unknown.
		io.Copy(io.Discard, resp.Body)
		return &reportSummary{Score: -1}, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("assess %s: http %d", mint, resp.StatusCode)
	}

	var report reportSummary
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode report for %s: %w", mint, err)
	}
	return &report, nil
}

// classify maps the provider's numeric risk score (higher is riskier)
// onto the closed risk enum.
func classify(report *reportSummary) domain.RiskLevel {
	switch {
	case report.Score < 0:
		return domain.RiskUnknown
	case report.Score >= 5000:
		return domain.RiskCritical
	case report.Score >= 2000:
		return domain.RiskHigh
	case report.Score >= 800:
		return domain.RiskMedium
	case report.Score >= 200:
		return domain.RiskLow
	default:
		return domain.RiskSafe
	}
}
