package driven

import (
	"context"
	"net/url"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// MetadataFetcher retrieves page metadata for a saved URL.
// Used by enrichment to fill in title, summary and thumbnail.
type MetadataFetcher interface {
	// Fetch loads the page and extracts its metadata.
	Fetch(ctx context.Context, u *url.URL) (*domain.ContentMetadata, error)
}
