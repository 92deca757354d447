package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/stash/internal/core/classifier"
	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages saved content.
type LibraryService struct {
	store    driven.ContentStore
	embedder *Embedder
	now      func() time.Time
	newID    func() string
}

// NewLibraryService creates a new library service.
// The embedder is optional (can be nil).
func NewLibraryService(store driven.ContentStore, embedder *Embedder) *LibraryService {
	return &LibraryService{
		store:    store,
		embedder: embedder,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetClock overrides the creation-time source. Used by tests.
func (s *LibraryService) SetClock(now func() time.Time) {
	s.now = now
}

// SaveURL classifies and stores a new link. The title starts as the host
// name until enrichment replaces it.
func (s *LibraryService) SaveURL(ctx context.Context, rawURL string) (*domain.SavedContent, error) {
	u, err := parseSaveURL(rawURL)
	if err != nil {
		return nil, err
	}

	title := u.Hostname()
	if title == "" {
		title = u.String()
	}

	content := &domain.SavedContent{
		ID:        s.newID(),
		Title:     title,
		SourceURL: u,
		Category:  classifier.Classify(u),
		CreatedAt: s.now().UTC(),
		Metadata:  map[string]string{},
	}

	if err := s.store.Save(ctx, content); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	logger.Debug("Saved %s as %s (%s)", content.URLString(), content.ID, content.Category)
	return content, nil
}

// parseSaveURL accepts absolute URLs and anything with a scheme.
func parseSaveURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: url is empty", domain.ErrInvalidInput)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if u.Scheme == "" && u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", domain.ErrInvalidInput, trimmed)
	}
	return u, nil
}

// List returns all saved content, newest first.
func (s *LibraryService) List(ctx context.Context) ([]domain.SavedContent, error) {
	contents, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	return SortNewestFirst(contents), nil
}

// Count returns the number of saved items.
func (s *LibraryService) Count(ctx context.Context) (int, error) {
	contents, err := s.store.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("count contents: %w", err)
	}
	return len(contents), nil
}

// Delete removes the given items one by one.
func (s *LibraryService) Delete(ctx context.Context, ids ...string) domain.BulkDeleteResult {
	return deleteEach(ctx, s.store, ids)
}

// DeleteAll removes every saved item.
func (s *LibraryService) DeleteAll(ctx context.Context) (domain.BulkDeleteResult, error) {
	contents, err := s.store.FetchAll(ctx)
	if err != nil {
		return domain.BulkDeleteResult{}, fmt.Errorf("list contents: %w", err)
	}

	ids := make([]string, len(contents))
	for i := range contents {
		ids[i] = contents[i].ID
	}
	return deleteEach(ctx, s.store, ids), nil
}

// EmbedMissing embeds the title and summary of every item lacking a vector
// and writes it back. Items are processed one at a time; a failure on one
// item does not stop the rest.
func (s *LibraryService) EmbedMissing(ctx context.Context) (driving.EmbedReport, error) {
	if s.embedder == nil {
		return driving.EmbedReport{}, domain.ErrEmbeddingUnavailable
	}

	contents, err := s.store.FetchAll(ctx)
	if err != nil {
		return driving.EmbedReport{}, fmt.Errorf("list contents: %w", err)
	}

	var report driving.EmbedReport
	for i := range contents {
		c := &contents[i]
		if c.HasEmbedding() {
			continue
		}
		report.Attempted++

		vector, err := s.embedder.Embed(ctx, EmbeddingText(c))
		if err != nil {
			logger.Warn("Embedding failed for %s: %v", c.ID, err)
			report.Failed++
			continue
		}
		if len(vector) == 0 {
			report.Empty++
			continue
		}

		c.EmbeddingVector = vector
		if err := s.store.Update(ctx, c); err != nil {
			logger.Warn("Embedding write-back failed for %s: %v", c.ID, err)
			report.Failed++
			continue
		}
		report.Embedded++
	}

	return report, nil
}

// EmbeddingText is the text embedded for a content item.
func EmbeddingText(c *domain.SavedContent) string {
	if c.Summary == nil || *c.Summary == "" {
		return c.Title
	}
	return c.Title + "\n" + *c.Summary
}

// deleteEach deletes ids in order. Every id is attempted even after a
// failure; a cancelled context fails the remaining ids.
func deleteEach(ctx context.Context, store driven.ContentStore, ids []string) domain.BulkDeleteResult {
	result := domain.BulkDeleteResult{Failed: make(map[string]error)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Failed[id] = err
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Delete failed for %s: %v", id, err)
			}
			result.Failed[id] = err
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result
}
