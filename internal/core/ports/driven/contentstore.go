package driven

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// ContentStore persists saved content.
// Backed by SQLite for the library database.
//
// Implementations wrap I/O errors with domain.ErrStorageFailure. No
// multi-record transaction is offered; bulk operations are client loops.
type ContentStore interface {
	// Save stores or replaces content by ID.
	Save(ctx context.Context, content *domain.SavedContent) error

	// FetchAll returns every stored record. Order is unspecified.
	FetchAll(ctx context.Context) ([]domain.SavedContent, error)

	// Update overwrites an existing record.
	// Returns domain.ErrNotFound if the ID is absent.
	Update(ctx context.Context, content *domain.SavedContent) error

	// Delete removes a record.
	// Returns domain.ErrNotFound if the ID is absent.
	Delete(ctx context.Context, id string) error
}
