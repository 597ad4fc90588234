package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-token-radar/internal/alert"
	"solana-token-radar/internal/domain"
	"solana-token-radar/internal/observability"
	"solana-token-radar/internal/security"
	"solana-token-radar/internal/source"
	"solana-token-radar/internal/storage"
)

// Summary is the per-cycle diagnostic count set reported to the
// operator.
type Summary struct {
	SourcesOK     int
	SourcesFailed int
	Observations  int
	Rejected      int
	Merged        int
	RiskFiltered  int
	Scored        int
	Alerted       int
	Suppressed    int
}

// Result is the outcome of one cycle.
type Result struct {
	CycleID string
	State   State
	Summary Summary
	Events  []alert.Event
}

type fetchResult struct {
	name string
	obs  []domain.TokenObservation
	err  error
	dur  time.Duration
}

// RunCycle executes one full scan cycle. The cycle deadline bounds the
// remote calls; already-collected observations survive the deadline and
// proceed through merge, assessment, scoring, and delivery. Storage or
// sink failures after the pipeline are logged, never propagated: state
// updates are not rolled back on delivery failure.
func (s *Scheduler) RunCycle(ctx context.Context) (*Result, error) {
	if len(s.deps.Adapters) == 0 {
		s.setState(StateAborted)
		return nil, ErrNoAdapters
	}

	s.setState(StateRunning)
	started := s.now()
	cycleID := uuid.NewString()
	cycleAt := started.UnixMilli()
	log := s.log.With().Str("cycle_id", cycleID).Logger()

	cctx, cancel := context.WithTimeout(ctx, s.cfg.CycleDeadline)
	defer cancel()

	var summary Summary

	// Fan out to adapters with bounded parallelism. Each goroutine
	// writes to its own result slot, so the collection needs no lock.
	observations := s.fetchAll(cctx, log, &summary)
	timedOut := errors.Is(cctx.Err(), context.DeadlineExceeded)

	candidates, rejected := s.deps.Merger.Merge(observations)
	summary.Merged = len(candidates)
	summary.Rejected = len(rejected)
	observability.DefaultMetrics.CandidatesMerged.Add(float64(len(candidates)))
	observability.DefaultMetrics.ObservationsRejected.Add(float64(len(rejected)))

	records := make([]*domain.AuditRecord, 0, len(candidates)+len(rejected))
	for _, rej := range rejected {
		records = append(records, &domain.AuditRecord{
			CycleID: cycleID,
			CycleAt: cycleAt,
			Mint:    rej.Mint,
			Sources: []string{rej.SourceName},
			Status:  domain.AuditStatusInvalidMint,
			Reason:  rej.Reason,
		})
	}

	// Assess every candidate, at most one upstream call per mint.
	cache := security.NewCycleCache(log, s.deps.Assessor)
	s.assessAll(cctx, cache, candidates)

	// The remote phase is over: the scoring engine runs over an
	// immutable candidate snapshot, and bookkeeping uses the parent
	// context so a fired cycle deadline does not lose results.
	ordered := make([]*domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Mint < ordered[j].Mint })

	var events []alert.Event
	nowMS := s.now().UnixMilli()
	for _, c := range ordered {
		rec := s.processCandidate(ctx, log, c, cycleID, cycleAt, nowMS, &summary, &events)
		records = append(records, rec)
	}

	outcome := StateCompleted
	if timedOut {
		outcome = StateTimedOut
	}
	s.setState(outcome)

	if len(events) > 0 {
		if err := s.deps.Sink.Deliver(ctx, events); err != nil {
			log.Error().Err(err).Int("events", len(events)).Msg("alert delivery failed")
		} else {
			observability.DefaultMetrics.AlertsDelivered.Add(float64(len(events)))
		}
	}
	if err := s.deps.Audits.InsertRecords(ctx, records); err != nil {
		log.Error().Err(err).Int("records", len(records)).Msg("audit insert failed")
	}

	dur := s.now().Sub(started)
	observability.RecordCycle(outcome.String(), dur.Seconds(), s.now().Unix())
	log.Info().
		Str("state", outcome.String()).
		Dur("duration", dur).
		Int("sources_ok", summary.SourcesOK).
		Int("sources_failed", summary.SourcesFailed).
		Int("merged", summary.Merged).
		Int("risk_filtered", summary.RiskFiltered).
		Int("scored", summary.Scored).
		Int("alerted", summary.Alerted).
		Int("suppressed", summary.Suppressed).
		Int("assessor_calls", cache.UpstreamCalls()).
		Msg("cycle finished")

	s.setState(StateIdle)
	return &Result{CycleID: cycleID, State: outcome, Summary: summary, Events: events}, nil
}

func (s *Scheduler) fetchAll(ctx context.Context, log zerolog.Logger, summary *Summary) []domain.TokenObservation {
	results := make([]fetchResult, len(s.deps.Adapters))
	sem := make(chan struct{}, s.cfg.MaxInFlight)
	var wg sync.WaitGroup

	for i, adapter := range s.deps.Adapters {
		wg.Add(1)
		go func(i int, adapter source.Adapter) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = fetchResult{name: adapter.Name(), err: ctx.Err()}
				return
			}
			start := s.now()
			obs, err := adapter.Fetch(ctx)
			results[i] = fetchResult{name: adapter.Name(), obs: obs, err: err, dur: s.now().Sub(start)}
		}(i, adapter)
	}
	wg.Wait()

	var observations []domain.TokenObservation
	for _, res := range results {
		if res.err != nil {
			summary.SourcesFailed++
			observability.RecordSourceFetch(res.name, "error", 0, res.dur.Seconds())
			log.Warn().Err(res.err).Str("source", res.name).Msg("source fetch failed")
			continue
		}
		summary.SourcesOK++
		summary.Observations += len(res.obs)
		observability.RecordSourceFetch(res.name, "ok", len(res.obs), res.dur.Seconds())
		observations = append(observations, res.obs...)
	}
	return observations
}

func (s *Scheduler) assessAll(ctx context.Context, cache *security.CycleCache, candidates map[string]*domain.Candidate) {
	sem := make(chan struct{}, s.cfg.AssessMaxInFlight)
	var wg sync.WaitGroup

	for _, c := range candidates {
		wg.Add(1)
		go func(c *domain.Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			actx := ctx
			var cancel context.CancelFunc
			if s.cfg.AssessTimeout > 0 {
				actx, cancel = context.WithTimeout(ctx, s.cfg.AssessTimeout)
				defer cancel()
			}
			start := s.now()
			c.Assessment = cache.Assess(actx, c.Mint)
			status := "ok"
			if c.Assessment.Level == domain.RiskUnknown {
				status = "unknown"
			}
			observability.RecordAssessorCall(status, s.now().Sub(start).Seconds())
		}(c)
	}
	wg.Wait()
}

// processCandidate runs the sequential tail of the pipeline for one
// candidate: risk gate, scoring, state update, cooldown gate. It
// returns the candidate's audit record.
func (s *Scheduler) processCandidate(
	ctx context.Context,
	log zerolog.Logger,
	c *domain.Candidate,
	cycleID string,
	cycleAt, nowMS int64,
	summary *Summary,
	events *[]alert.Event,
) *domain.AuditRecord {
	rec := &domain.AuditRecord{
		CycleID: cycleID,
		CycleAt: cycleAt,
		Mint:    c.Mint,
		Sources: c.SourceNames(),
		Merged:  c.Merged,
	}
	if c.Assessment != nil {
		rec.Risk = c.Assessment.Level
		rec.DealBreakers = c.Assessment.DealBreakers
	}

	prev, err := s.deps.States.GetSeen(ctx, c.Mint)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error().Err(err).Str("mint", c.Mint).Msg("state lookup failed")
	}

	acceptable := c.Assessment.Acceptable(s.cfg.HighRiskTolerant)
	riskImproved := prev != nil && prev.Excluded && acceptable

	if !acceptable {
		summary.RiskFiltered++
		observability.DefaultMetrics.CandidatesRiskFiltered.
			WithLabelValues(string(rec.Risk)).Inc()
		rec.Status = domain.AuditStatusRiskFiltered
		rec.Reason = riskFilterReason(c.Assessment)
	} else {
		score := s.deps.Engine.Score(c)
		c.Score = &score
		rec.Score = &score
		summary.Scored++
		observability.DefaultMetrics.CandidatesScored.Inc()

		if score >= s.cfg.ScoreThreshold {
			allowed, gateErr := s.deps.Gate.Allow(ctx, c.Mint, nowMS, riskImproved)
			if gateErr != nil {
				log.Error().Err(gateErr).Str("mint", c.Mint).Msg("cooldown gate failed, suppressing")
				allowed = false
			}
			if allowed {
				*events = append(*events, alert.Event{
					CycleID:    cycleID,
					Mint:       c.Mint,
					Score:      score,
					Merged:     c.Merged,
					Sources:    c.SourceNames(),
					Assessment: c.Assessment,
					At:         nowMS,
				})
				if err := s.deps.States.RecordAlert(ctx, c.Mint, nowMS); err != nil {
					log.Error().Err(err).Str("mint", c.Mint).Msg("alert bookkeeping failed")
				}
				summary.Alerted++
				rec.Status = domain.AuditStatusAlerted
			} else {
				summary.Suppressed++
				observability.DefaultMetrics.AlertsSuppressed.Inc()
				rec.Status = domain.AuditStatusCooldown
				rec.Reason = "cooldown window active"
			}
		} else {
			rec.Status = domain.AuditStatusScored
		}
	}

	state := &domain.TokenState{
		Mint:        c.Mint,
		FirstSeenAt: cycleAt,
		LastSeenAt:  cycleAt,
		LastScore:   c.Score,
		LastRisk:    rec.Risk,
		Excluded:    !acceptable,
	}
	if rec.Status == domain.AuditStatusAlerted {
		state.AlertedAt = nowMS
	}
	if err := s.deps.States.UpsertSeen(ctx, state); err != nil {
		log.Error().Err(err).Str("mint", c.Mint).Msg("state upsert failed")
	}

	return rec
}

func riskFilterReason(a *domain.SecurityAssessment) string {
	if a == nil {
		return "no assessment"
	}
	reason := fmt.Sprintf("risk %s", a.Level)
	if len(a.DealBreakers) > 0 {
		reason += ": " + strings.Join(a.DealBreakers, ", ")
	}
	return reason
}
