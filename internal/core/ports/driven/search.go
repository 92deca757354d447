package driven

import (
	"context"
)

// SearchEngine provides full-text search over saved content.
// Backed by SQLite FTS5 for BM25 keyword search.
type SearchEngine interface {
	// Search performs a keyword search and returns matching content IDs
	// in relevance order, best first.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// ContentID is the matched content.
	ContentID string

	// Score is the relevance score. Higher is better.
	Score float64
}
