package driving

import "context"

// EnrichmentService fills in page metadata for content that has none.
type EnrichmentService interface {
	// EnrichAll loads the library and enriches every item that needs it.
	// Per-item failures are counted in the report, never returned.
	EnrichAll(ctx context.Context) (EnrichReport, error)
}

// EnrichReport summarises an enrichment batch.
type EnrichReport struct {
	// Attempted is the number of items that needed enrichment.
	Attempted int

	// Enriched is the number of items merged and written back.
	Enriched int

	// Failed is the number of items whose fetch or write-back failed.
	Failed int
}
