package services

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure Browser implements the interface.
var _ driving.BrowseService = (*Browser)(nil)

// Browser composes a single load and a single search with a Composer, for
// commands that show the library once instead of keeping a session.
type Browser struct {
	library driving.LibraryService
	search  driving.SearchService
}

// NewBrowser creates a browser. The search service is optional (can be
// nil); without it every query shows no results.
func NewBrowser(library driving.LibraryService, search driving.SearchService) *Browser {
	return &Browser{library: library, search: search}
}

// Browse returns the visible set for filter and query.
func (b *Browser) Browse(ctx context.Context, filter domain.Filter, query string) ([]domain.SavedContent, error) {
	loaded, err := b.library.List(ctx)
	if err != nil {
		return nil, err
	}

	composer := NewComposer()
	composer.SetFilter(filter)
	if req, ok := composer.SetQuery(query); ok {
		results, err := b.runSearch(ctx, req.Query)
		if err != nil {
			logger.Warn("Search for %q failed, showing no results: %v", req.Query, err)
		}
		composer.Accept(req.Token, results, err)
	}
	return composer.Visible(loaded), nil
}

func (b *Browser) runSearch(ctx context.Context, query string) ([]domain.SavedContent, error) {
	if b.search == nil {
		return nil, domain.ErrSearchUnavailable
	}
	return b.search.Search(ctx, query)
}
