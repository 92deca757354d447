package services

import (
	"slices"
	"strings"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// SearchRequest is a search the composer wants issued.
// Token identifies it when the results come back.
type SearchRequest struct {
	Token uint64
	Query string
}

// Composer derives the visible set from a category filter and a free-text
// query. It is not safe for concurrent use; the session owns it.
//
// Every query change bumps a token. Results are only accepted for the
// current token, so a slow search for an old query can never replace the
// results of a newer one.
type Composer struct {
	filter domain.Filter
	query  string

	token   uint64
	pending bool

	// results is nil while no search result has been accepted for the
	// current query, and non-nil (possibly empty) once one has.
	results []domain.SavedContent
}

// NewComposer creates a composer showing everything.
func NewComposer() *Composer {
	return &Composer{filter: domain.FilterAll}
}

// Filter returns the selected category filter.
func (c *Composer) Filter() domain.Filter {
	return c.filter
}

// Query returns the current query as typed.
func (c *Composer) Query() string {
	return c.query
}

// Searching reports whether a search for the current query is in flight.
func (c *Composer) Searching() bool {
	return c.pending
}

// SetFilter changes the category filter. It never triggers a search.
func (c *Composer) SetFilter(filter domain.Filter) {
	if !filter.IsValid() {
		filter = domain.FilterAll
	}
	c.filter = filter
}

// SetQuery records a new query and invalidates any search in flight. A
// blank query drops all search results and returns false. Otherwise it
// returns the search to issue.
func (c *Composer) SetQuery(query string) (SearchRequest, bool) {
	c.query = query
	c.token++

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		c.pending = false
		c.results = nil
		return SearchRequest{}, false
	}

	c.pending = true
	return SearchRequest{Token: c.token, Query: trimmed}, true
}

// Accept applies search results for the given token. Stale tokens are
// dropped and Accept returns false. A failed search counts as no results.
func (c *Composer) Accept(token uint64, results []domain.SavedContent, err error) bool {
	if token != c.token || !c.pending {
		return false
	}
	c.pending = false
	if err != nil {
		results = nil
	}
	c.results = make([]domain.SavedContent, len(results))
	copy(c.results, results)
	return true
}

// Forget removes ids from the accepted search results.
func (c *Composer) Forget(ids []string) {
	if c.results == nil {
		return
	}
	c.results = slices.DeleteFunc(c.results, func(sc domain.SavedContent) bool {
		return slices.Contains(ids, sc.ID)
	})
}

// Visible derives the visible set from the loaded content.
//
// Without a query, it is the loaded content passing the filter, newest
// first. With a query, it is the accepted search results in relevance
// order passing the filter; items also present in loaded are taken from
// loaded so later merges show through. While a search is in flight the
// previously accepted results stay visible, or the filtered loaded set if
// there are none.
func (c *Composer) Visible(loaded []domain.SavedContent) []domain.SavedContent {
	if strings.TrimSpace(c.query) == "" || c.results == nil {
		return c.filter.Apply(SortNewestFirst(loaded))
	}

	byID := make(map[string]int, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = i
	}

	resolved := make([]domain.SavedContent, 0, len(c.results))
	for i := range c.results {
		if j, ok := byID[c.results[i].ID]; ok {
			resolved = append(resolved, loaded[j])
			continue
		}
		resolved = append(resolved, c.results[i])
	}
	return c.filter.Apply(resolved)
}

// SortNewestFirst returns a copy of contents ordered by creation time,
// newest first, with ties broken by id. Storage order is never relied on.
func SortNewestFirst(contents []domain.SavedContent) []domain.SavedContent {
	sorted := slices.Clone(contents)
	slices.SortStableFunc(sorted, func(a, b domain.SavedContent) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}
