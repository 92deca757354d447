package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure Enricher implements the interface.
var _ driving.EnrichmentService = (*Enricher)(nil)

// EnrichOutcome is the result of enriching one item.
type EnrichOutcome struct {
	// Content is the merged record on success, or the untouched input on failure.
	Content domain.SavedContent

	// Err is set when the fetch or the write-back failed.
	Err error
}

// Enricher fetches page metadata for sparse content, merges it and writes
// the result back. Each item is isolated: a failure leaves that item
// untouched and never stops the batch.
type Enricher struct {
	fetcher driven.MetadataFetcher
	store   driven.ContentStore

	concurrency int
	timeout     time.Duration
	limiter     *rate.Limiter
}

// NewEnricher creates an enricher from enrichment settings.
// A non-positive concurrency runs items one at a time.
func NewEnricher(
	fetcher driven.MetadataFetcher,
	store driven.ContentStore,
	settings domain.EnrichmentSettings,
) *Enricher {
	concurrency := settings.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if settings.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(settings.RatePerSecond), concurrency)
	}

	return &Enricher{
		fetcher:     fetcher,
		store:       store,
		concurrency: concurrency,
		timeout:     settings.Timeout,
		limiter:     limiter,
	}
}

// Pending returns the items that need enrichment, in input order.
func Pending(contents []domain.SavedContent) []domain.SavedContent {
	var pending []domain.SavedContent
	for i := range contents {
		if contents[i].NeedsEnrichment() {
			pending = append(pending, contents[i])
		}
	}
	return pending
}

// Run enriches items concurrently and calls onItem once per item as it
// finishes. onItem may be called from several goroutines at once.
// Run returns only after every item has been attempted.
func (e *Enricher) Run(
	ctx context.Context,
	items []domain.SavedContent,
	onItem func(EnrichOutcome),
) driving.EnrichReport {
	report := driving.EnrichReport{Attempted: len(items)}
	if len(items) == 0 {
		return report
	}

	logger.Debug("Enriching %d item(s), concurrency=%d", len(items), e.concurrency)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, e.concurrency)
	)

	for i := range items {
		item := items[i].Clone()

		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := e.enrichOne(ctx, item)

			mu.Lock()
			if outcome.Err != nil {
				report.Failed++
			} else {
				report.Enriched++
			}
			mu.Unlock()

			if onItem != nil {
				onItem(outcome)
			}
		}()
	}

	wg.Wait()
	logger.Debug("Enrichment done: %d enriched, %d failed", report.Enriched, report.Failed)
	return report
}

// EnrichAll loads the library and enriches every item that needs it.
func (e *Enricher) EnrichAll(ctx context.Context) (driving.EnrichReport, error) {
	contents, err := e.store.FetchAll(ctx)
	if err != nil {
		return driving.EnrichReport{}, fmt.Errorf("load library: %w", err)
	}
	return e.Run(ctx, Pending(contents), nil), nil
}

// enrichOne fetches, merges and writes back a single item.
func (e *Enricher) enrichOne(ctx context.Context, item domain.SavedContent) EnrichOutcome {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return EnrichOutcome{Content: item, Err: err}
		}
	}

	fetchCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	meta, err := e.fetcher.Fetch(fetchCtx, item.SourceURL)
	if err != nil {
		logger.Warn("Enrichment fetch failed for %s: %v", item.ID, err)
		return EnrichOutcome{Content: item, Err: fmt.Errorf("fetch %s: %w", item.URLString(), err)}
	}

	merged := item.Clone()
	merged.Merge(*meta)

	if err := e.store.Update(ctx, &merged); err != nil {
		logger.Warn("Enrichment write-back failed for %s: %v", item.ID, err)
		return EnrichOutcome{Content: item, Err: fmt.Errorf("update %s: %w", item.ID, err)}
	}

	return EnrichOutcome{Content: merged}
}
