package mcp

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
)

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	mu        sync.Mutex
	contents  []domain.SavedContent
	saved     *domain.SavedContent
	deleteErr map[string]error
	deleted   []string
	err       error
}

func (m *mockLibraryService) SaveURL(_ context.Context, rawURL string) (*domain.SavedContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.saved != nil {
		return m.saved, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, domain.ErrInvalidInput
	}
	return &domain.SavedContent{
		ID:        "new-id",
		Title:     u.Host,
		SourceURL: u,
		Category:  domain.CategoryWeb,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Metadata:  map[string]string{},
	}, nil
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.SavedContent, error) {
	return m.contents, m.err
}

func (m *mockLibraryService) Count(_ context.Context) (int, error) {
	return len(m.contents), m.err
}

func (m *mockLibraryService) Delete(_ context.Context, ids ...string) domain.BulkDeleteResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := domain.BulkDeleteResult{Failed: map[string]error{}}
	for _, id := range ids {
		if err := m.deleteErr[id]; err != nil {
			result.Failed[id] = err
			continue
		}
		m.deleted = append(m.deleted, id)
		result.Deleted = append(result.Deleted, id)
	}
	return result
}

func (m *mockLibraryService) DeleteAll(ctx context.Context) (domain.BulkDeleteResult, error) {
	ids := make([]string, len(m.contents))
	for i := range m.contents {
		ids[i] = m.contents[i].ID
	}
	return m.Delete(ctx, ids...), nil
}

func (m *mockLibraryService) EmbedMissing(_ context.Context) (driving.EmbedReport, error) {
	return driving.EmbedReport{}, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SavedContent
	err     error
	query   string
}

func (m *mockSearchService) Search(_ context.Context, query string) ([]domain.SavedContent, error) {
	m.query = query
	return m.results, m.err
}

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// sampleContents returns three items, newest first.
func sampleContents() []domain.SavedContent {
	summary := "A long read"
	return []domain.SavedContent{
		{
			ID:        "c-3",
			Title:     "Cat video",
			SourceURL: mustURL("https://www.youtube.com/watch?v=abc"),
			Category:  domain.CategoryVideo,
			CreatedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
			Metadata:  map[string]string{},
		},
		{
			ID:           "c-2",
			Title:        "Essay",
			SourceURL:    mustURL("https://blog.example.com/essay"),
			Category:     domain.CategoryWeb,
			CreatedAt:    time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			ThumbnailURL: mustURL("https://blog.example.com/cover.png"),
			Summary:      &summary,
			Metadata:     map[string]string{domain.MetadataKeySiteName: "Example Blog"},
		},
		{
			ID:        "c-1",
			Title:     "Coffee shop",
			SourceURL: mustURL("https://map.naver.com/p/entry/place/1"),
			Category:  domain.CategoryMapPlaceA,
			CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Metadata:  map[string]string{},
		},
	}
}
