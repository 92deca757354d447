package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/stash/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

var errBoom = errors.New("boom")

// --- Mock implementations ---

// faultyStore wraps a memory store and fails selected operations.
type faultyStore struct {
	*memory.ContentStore

	mu          sync.Mutex
	fetchErr    error
	updateErr   map[string]error
	deleteErr   map[string]error
	fetchCalls  int
	afterRead   func([]domain.SavedContent)
	updateCalls []string
	deleteCalls []string
}

func newFaultyStore(contents ...domain.SavedContent) *faultyStore {
	s := &faultyStore{
		ContentStore: memory.NewContentStore(),
		updateErr:    make(map[string]error),
		deleteErr:    make(map[string]error),
	}
	for i := range contents {
		_ = s.ContentStore.Save(context.Background(), &contents[i])
	}
	return s
}

func (s *faultyStore) FetchAll(ctx context.Context) ([]domain.SavedContent, error) {
	s.mu.Lock()
	s.fetchCalls++
	err := s.fetchErr
	hook := s.afterRead
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	contents, err := s.ContentStore.FetchAll(ctx)
	if hook != nil && err == nil {
		hook(contents)
	}
	return contents, err
}

// holdFetches makes every later FetchAll read the store at once but return
// only after release is closed. Each read is sent on the returned channel.
func (s *faultyStore) holdFetches(release <-chan struct{}) <-chan []domain.SavedContent {
	reads := make(chan []domain.SavedContent, 8)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterRead = func(contents []domain.SavedContent) {
		reads <- domain.CloneAll(contents)
		<-release
	}
	return reads
}

func (s *faultyStore) Update(ctx context.Context, content *domain.SavedContent) error {
	s.mu.Lock()
	s.updateCalls = append(s.updateCalls, content.ID)
	err := s.updateErr[content.ID]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.ContentStore.Update(ctx, content)
}

func (s *faultyStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls = append(s.deleteCalls, id)
	err := s.deleteErr[id]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.ContentStore.Delete(ctx, id)
}

func (s *faultyStore) setFetchErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

func (s *faultyStore) fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

func (s *faultyStore) get(id string) (domain.SavedContent, bool) {
	all, _ := s.ContentStore.FetchAll(context.Background())
	for i := range all {
		if all[i].ID == id {
			return all[i], true
		}
	}
	return domain.SavedContent{}, false
}

// mockFetcher implements driven.MetadataFetcher for testing.
type mockFetcher struct {
	mu      sync.Mutex
	results map[string]*domain.ContentMetadata
	errs    map[string]error
	delay   map[string]time.Duration
	calls   []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		results: make(map[string]*domain.ContentMetadata),
		errs:    make(map[string]error),
		delay:   make(map[string]time.Duration),
	}
}

var _ driven.MetadataFetcher = (*mockFetcher)(nil)

func (m *mockFetcher) Fetch(ctx context.Context, u *url.URL) (*domain.ContentMetadata, error) {
	key := u.String()

	m.mu.Lock()
	m.calls = append(m.calls, key)
	delay := m.delay[key]
	err := m.errs[key]
	meta := m.results[key]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return &domain.ContentMetadata{Title: "Fetched " + key, Description: "about " + key}, nil
	}
	return meta, nil
}

func (m *mockFetcher) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// gatedSearch implements driving.SearchService. Each query blocks until
// released, so tests control completion order.
type gatedSearch struct {
	mu      sync.Mutex
	results map[string][]domain.SavedContent
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
}

func newGatedSearch() *gatedSearch {
	return &gatedSearch{
		results: make(map[string][]domain.SavedContent),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (g *gatedSearch) gate(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[query]
	if !ok {
		ch = make(chan struct{})
		g.gates[query] = ch
	}
	return ch
}

func (g *gatedSearch) release(query string) {
	close(g.gate(query))
}

func (g *gatedSearch) Search(ctx context.Context, query string) ([]domain.SavedContent, error) {
	g.mu.Lock()
	g.calls = append(g.calls, query)
	g.mu.Unlock()

	// A cancelled search still returns its results, like a backend that
	// ignores cancellation. The session must drop them by token.
	select {
	case <-g.gate(query):
	case <-ctx.Done():
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.results[query], g.errs[query]
}

func (g *gatedSearch) searched() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	model  string
	vector []float32
	err    error

	mu    sync.Mutex
	calls int
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) ModelName() string { return m.model }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Fixtures ---

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// sparse returns unenriched content created minutes after baseTime.
func sparse(id, rawURL string, category domain.ContentCategory, minutes int) domain.SavedContent {
	return domain.SavedContent{
		ID:        id,
		Title:     id,
		SourceURL: mustURL(rawURL),
		Category:  category,
		CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
		Metadata:  map[string]string{},
	}
}

// enriched returns content that no longer needs enrichment.
func enriched(id, rawURL string, category domain.ContentCategory, minutes int) domain.SavedContent {
	c := sparse(id, rawURL, category, minutes)
	c.Metadata = map[string]string{domain.MetadataKeySiteName: "Site"}
	return c
}

func ids(contents []domain.SavedContent) []string {
	out := make([]string, len(contents))
	for i := range contents {
		out[i] = contents[i].ID
	}
	return out
}
