// Package ports defines the contracts between the generation core and its
// external collaborators. Adapters implement these interfaces so the
// application layer depends on abstractions rather than concrete backends.
//
// Port design principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never adapter DTOs
//   - Errors use the domain taxonomy (upstream, store, validation)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/goroku-app/goroku/internal/domain"
)

// CompletionRequest carries one prompt and its sampling configuration to
// the language model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// LanguageModel is the port for the completion backend.
//
// Implementations classify every failure into the domain upstream taxonomy
// at this boundary; callers never inspect transport-level errors. A single
// failure is terminal, retry policy belongs to the caller.
type LanguageModel interface {
	// Complete requests one completion and returns the raw model text.
	// Returns a domain.UpstreamError on any failure.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// QuoteStore is the port for quote persistence.
//
// LoadAll snapshots are allowed to be stale: lineup output is cached per
// day regardless, and prompt example selection tolerates lag.
type QuoteStore interface {
	// LoadAll returns every persisted quote, curated entries first.
	LoadAll(ctx context.Context) ([]domain.Quote, error)

	// Append persists a new quote and returns its assigned id.
	// The id is unique and monotonically assigned by the store.
	Append(ctx context.Context, q domain.Quote) (int64, error)

	// AdjustLikes applies delta to the like counter and returns the new
	// value. The counter never goes below zero.
	AdjustLikes(ctx context.Context, id int64, delta int64) (int64, error)

	// AdjustReposts applies delta to the repost counter and returns the
	// new value. The counter never goes below zero.
	AdjustReposts(ctx context.Context, id int64, delta int64) (int64, error)

	// AdjustQuotedReposts applies delta to the quoted-repost counter and
	// returns the new value. The counter never goes below zero.
	AdjustQuotedReposts(ctx context.Context, id int64, delta int64) (int64, error)
}
