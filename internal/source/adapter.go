// Package source defines the market-data provider contract and the
// concrete adapters behind it. Each adapter normalizes its provider's
// responses into TokenObservations and isolates provider failures: an
// adapter that exhausts its retries fails alone, never the cycle.
package source

import (
	"context"
	"errors"

	"solana-token-radar/internal/domain"
)

// Adapter fetches candidate tokens from one market-data provider.
// Implementations own their rate limiting, retries and per-request
// timeouts; Fetch returns whatever the provider reported this cycle.
type Adapter interface {
	// Name identifies the adapter; it becomes the SourceName on every
	// observation it produces and must be unique within a session.
	Name() string

	// Fetch returns the provider's current view of newly active or
	// trending tokens. Missing attributes are nil, never zero.
	Fetch(ctx context.Context) ([]domain.TokenObservation, error)
}

// ErrExhausted wraps the last transient error after all retry attempts
// for one fetch were spent.
var ErrExhausted = errors.New("source: retries exhausted")
