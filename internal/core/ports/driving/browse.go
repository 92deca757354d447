package driving

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// BrowseService answers one-shot views of the library, narrowed by a
// category filter and a free-text query the same way a session's library
// view narrows them.
type BrowseService interface {
	// Browse returns the visible set for filter and query. Without a query
	// it is the library passing the filter, newest first. With one it is
	// the search results in relevance order passing the filter; a failed
	// search shows no results rather than an error. Only a failure to load
	// the library is returned.
	Browse(ctx context.Context, filter domain.Filter, query string) ([]domain.SavedContent, error)
}
