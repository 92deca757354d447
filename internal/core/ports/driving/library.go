package driving

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// LibraryService manages the saved content library outside of a session.
type LibraryService interface {
	// SaveURL classifies and stores a new link.
	// Returns domain.ErrInvalidInput for empty or host-less input.
	SaveURL(ctx context.Context, rawURL string) (*domain.SavedContent, error)

	// List returns all saved content, newest first.
	List(ctx context.Context) ([]domain.SavedContent, error)

	// Count returns the number of saved items.
	Count(ctx context.Context) (int, error)

	// Delete removes the given items one by one, continuing past failures.
	Delete(ctx context.Context, ids ...string) domain.BulkDeleteResult

	// DeleteAll removes every saved item. The error is only set when the
	// library could not be listed; per-item failures are in the result.
	DeleteAll(ctx context.Context) (domain.BulkDeleteResult, error)

	// EmbedMissing populates embedding vectors for content lacking one.
	EmbedMissing(ctx context.Context) (EmbedReport, error)
}

// EmbedReport summarises an EmbedMissing run.
type EmbedReport struct {
	// Attempted is the number of items without an embedding.
	Attempted int

	// Embedded is the number of items written back with a vector.
	Embedded int

	// Empty is the number of items no model produced a vector for.
	Empty int

	// Failed is the number of items whose embedding or write-back failed.
	Failed int
}
