package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/mapper"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore is an in-memory implementation of driven.ContentStore.
// Entries are kept in their persisted record form so reads go through the
// same decoding path as the SQLite store.
type ContentStore struct {
	mu      sync.RWMutex
	records map[string]mapper.Record
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		records: make(map[string]mapper.Record),
	}
}

// Save stores or replaces content by ID.
func (s *ContentStore) Save(_ context.Context, content *domain.SavedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[content.ID] = mapper.ToRecord(content)
	return nil
}

// FetchAll returns every stored record in map order.
func (s *ContentStore) FetchAll(_ context.Context) ([]domain.SavedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SavedContent, 0, len(s.records))
	for _, r := range s.records {
		result = append(result, mapper.ToDomain(r))
	}
	return result, nil
}

// Update overwrites an existing record.
func (s *ContentStore) Update(_ context.Context, content *domain.SavedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[content.ID]; !ok {
		return domain.ErrNotFound
	}
	s.records[content.ID] = mapper.ToRecord(content)
	return nil
}

// Delete removes a record.
func (s *ContentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// Put inserts a raw record, bypassing the domain encoder.
// Used to simulate rows written by another process.
func (s *ContentStore) Put(r mapper.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
}

// Len returns the number of stored records.
func (s *ContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
