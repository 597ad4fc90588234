// Package scheduler drives repeated scan cycles: fan-out to source
// adapters, merge, security gate, scoring, state update, and alert
// delivery, under a per-cycle deadline and a total session runtime
// bound.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-token-radar/internal/aggregate"
	"solana-token-radar/internal/alert"
	"solana-token-radar/internal/scoring"
	"solana-token-radar/internal/security"
	"solana-token-radar/internal/source"
	"solana-token-radar/internal/storage"
)

// State is the scheduler's cycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateTimedOut
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ErrNoAdapters is returned when a session starts with no source
// adapters configured. It is terminal: the session aborts.
var ErrNoAdapters = errors.New("scheduler: no source adapters configured")

// Config is the immutable per-session scheduler configuration.
type Config struct {
	Interval       time.Duration
	SessionRuntime time.Duration // 0 means unbounded
	CycleDeadline  time.Duration

	MaxInFlight       int // concurrent adapter fetches
	AssessMaxInFlight int // concurrent security assessments
	AssessTimeout     time.Duration

	HighRiskTolerant bool
	ScoreThreshold   float64
}

// Deps are the collaborators one scheduler drives.
type Deps struct {
	Adapters []source.Adapter
	Merger   *aggregate.Merger
	Assessor security.Assessor
	Engine   *scoring.Engine
	States   storage.StateStore
	Audits   storage.AuditStore
	Gate     *alert.Gate
	Sink     alert.Sink
	Log      zerolog.Logger
}

// Scheduler runs scan cycles strictly sequentially: a new cycle never
// starts while one is running, so cross-cycle locking on the state
// store is unnecessary.
type Scheduler struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger
	now  func() time.Time

	mu    sync.Mutex
	state State
}

// New creates a scheduler. Configuration is captured once and never
// mutated mid-session.
func New(cfg Config, deps Deps) *Scheduler {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	if cfg.AssessMaxInFlight <= 0 {
		cfg.AssessMaxInFlight = 4
	}
	return &Scheduler{
		cfg:  cfg,
		deps: deps,
		log:  deps.Log,
		now:  time.Now,
	}
}

// State reports the current cycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run executes cycles at the configured interval until the context is
// cancelled or the session runtime bound elapses. The first cycle runs
// immediately. Missed ticks are skipped, never queued: the next cycle
// is always scheduled at lastTick + interval in wall time.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.deps.Adapters) == 0 {
		s.setState(StateAborted)
		return ErrNoAdapters
	}

	sessionStart := s.now()
	var sessionEnd time.Time
	if s.cfg.SessionRuntime > 0 {
		sessionEnd = sessionStart.Add(s.cfg.SessionRuntime)
	}

	lastTick := sessionStart
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			if errors.Is(err, ErrNoAdapters) {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error().Err(err).Msg("cycle failed")
		}

		next := lastTick.Add(s.cfg.Interval)
		now := s.now()
		skipped := 0
		for !next.After(now) {
			next = next.Add(s.cfg.Interval)
			skipped++
		}
		if skipped > 0 {
			s.log.Warn().Int("skipped_ticks", skipped).Msg("cycle overran interval, skipping missed ticks")
		}
		lastTick = next

		if !sessionEnd.IsZero() && !next.Before(sessionEnd) {
			s.log.Info().
				Dur("elapsed", now.Sub(sessionStart)).
				Msg("session runtime bound reached, ending session")
			return nil
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
