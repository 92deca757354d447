package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// Ensure SearchEngine implements the interface.
var _ driven.SearchEngine = (*SearchEngine)(nil)

// SearchEngine is a naive substring search over a ContentStore.
// An item matches only if every query term occurs in its title, summary
// or URL, as with the SQLite engine. Items score one point per occurrence.
type SearchEngine struct {
	store *ContentStore
}

// NewSearchEngine creates a search engine reading from store.
func NewSearchEngine(store *ContentStore) *SearchEngine {
	return &SearchEngine{store: store}
}

// Search returns matching content IDs, best first.
func (e *SearchEngine) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	contents, err := e.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var hits []driven.SearchHit
	for i := range contents {
		c := &contents[i]
		haystack := strings.ToLower(c.Title + " " + c.URLString())
		if c.Summary != nil {
			haystack += " " + strings.ToLower(*c.Summary)
		}

		score := 0
		for _, term := range terms {
			n := strings.Count(haystack, term)
			if n == 0 {
				score = 0
				break
			}
			score += n
		}
		if score > 0 {
			hits = append(hits, driven.SearchHit{ContentID: c.ID, Score: float64(score)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ContentID < hits[j].ContentID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
