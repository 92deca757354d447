package driving

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// SearchService provides free-text search to external actors.
type SearchService interface {
	// Search returns content matching the query in relevance order.
	// A blank query returns no results.
	Search(ctx context.Context, query string) ([]domain.SavedContent, error)
}
