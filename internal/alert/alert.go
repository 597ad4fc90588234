// Package alert defines the delivery surface for qualifying candidates
// and the cooldown gate that suppresses repeats.
package alert

import (
	"context"

	"solana-token-radar/internal/domain"
)

// Event is one qualifying candidate handed to a sink. Delivery is
// at-least-once: a sink failure is logged by the caller and never rolls
// back state store updates.
type Event struct {
	CycleID    string
	Mint       string
	Score      float64
	Merged     domain.Attributes
	Sources    []string
	Assessment *domain.SecurityAssessment
	At         int64 // ms
}

// Sink receives all qualifying candidates of one cycle.
type Sink interface {
	Deliver(ctx context.Context, events []Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, events []Event) error

func (f SinkFunc) Deliver(ctx context.Context, events []Event) error {
	return f(ctx, events)
}
