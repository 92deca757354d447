package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// rrfK is the reciprocal rank fusion constant.
const rrfK = 60

// defaultSearchLimit is used when settings leave the limit at zero.
const defaultSearchLimit = 50

// scoredID holds intermediate search results before hydration.
type scoredID struct {
	id    string
	score float64
}

// SearchService provides keyword search, optionally fused with semantic
// similarity over stored embeddings.
type SearchService struct {
	store    driven.ContentStore
	engine   driven.SearchEngine
	vectors  driven.VectorIndex
	embedder *Embedder
	limit    int
}

// NewSearchService creates a keyword search service.
func NewSearchService(
	store driven.ContentStore,
	engine driven.SearchEngine,
	settings domain.SearchSettings,
) *SearchService {
	limit := settings.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &SearchService{
		store:  store,
		engine: engine,
		limit:  limit,
	}
}

// EnableSemantic turns on hybrid search. Both arguments are required.
func (s *SearchService) EnableSemantic(vectors driven.VectorIndex, embedder *Embedder) {
	s.vectors = vectors
	s.embedder = embedder
}

// Search returns content matching the query in relevance order.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.SavedContent, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SavedContent{}, nil
	}

	var (
		ranked []scoredID
		err    error
	)
	if s.vectors != nil && s.embedder != nil {
		ranked, err = s.hybridSearch(ctx, query)
	} else {
		ranked, err = s.keywordSearch(ctx, query)
	}
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := s.hydrate(ctx, ranked)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}
	if len(results) > s.limit {
		results = results[:s.limit]
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

func (s *SearchService) keywordSearch(ctx context.Context, query string) ([]scoredID, error) {
	if s.engine == nil {
		return nil, domain.ErrSearchUnavailable
	}

	hits, err := s.engine.Search(ctx, query, s.limit*2)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	logger.Debug("Keyword search: %d hits", len(hits))

	results := make([]scoredID, len(hits))
	for i, hit := range hits {
		results[i] = scoredID{id: hit.ContentID, score: hit.Score}
	}
	return results, nil
}

func (s *SearchService) vectorSearch(ctx context.Context, query string) ([]scoredID, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	if len(embedding) == 0 {
		return nil, nil
	}

	hits, err := s.vectors.Search(ctx, embedding, s.limit*2)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]scoredID, len(hits))
	for i, hit := range hits {
		results[i] = scoredID{id: hit.ContentID, score: hit.Similarity}
	}
	return results, nil
}

// hybridSearch runs keyword and vector search in parallel and fuses them.
// If one side fails the other is used alone.
func (s *SearchService) hybridSearch(ctx context.Context, query string) ([]scoredID, error) {
	var (
		keywordResults, vectorResults []scoredID
		keywordErr, vectorErr         error
		wg                            sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		keywordResults, keywordErr = s.keywordSearch(ctx, query)
	}()
	go func() {
		defer wg.Done()
		vectorResults, vectorErr = s.vectorSearch(ctx, query)
	}()
	wg.Wait()

	switch {
	case keywordErr != nil && vectorErr != nil:
		return nil, errors.Join(keywordErr, vectorErr)
	case keywordErr != nil:
		logger.Warn("Hybrid search: keyword search failed, using vector results only")
		return vectorResults, nil
	case vectorErr != nil:
		logger.Warn("Hybrid search: vector search failed, using keyword results only")
		return keywordResults, nil
	}

	return reciprocalRankFusion(rrfK, keywordResults, vectorResults), nil
}

// reciprocalRankFusion merges ranked lists. k damps the weight of top
// ranks. Ties keep first-seen order.
func reciprocalRankFusion(k int, lists ...[]scoredID) []scoredID {
	scores := make(map[string]float64)
	var order []string
	for _, l := range lists {
		for rank, item := range l {
			if _, seen := scores[item.id]; !seen {
				order = append(order, item.id)
			}
			scores[item.id] += 1.0 / float64(k+rank+1)
		}
	}

	results := make([]scoredID, len(order))
	for i, id := range order {
		results[i] = scoredID{id: id, score: scores[id]}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	return results
}

// hydrate resolves ids to content, dropping ids that no longer exist.
func (s *SearchService) hydrate(ctx context.Context, ranked []scoredID) ([]domain.SavedContent, error) {
	if len(ranked) == 0 {
		return []domain.SavedContent{}, nil
	}

	contents, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(contents))
	for i := range contents {
		byID[contents[i].ID] = i
	}

	results := make([]domain.SavedContent, 0, len(ranked))
	for _, r := range ranked {
		if i, ok := byID[r.id]; ok {
			results = append(results, contents[i])
		}
	}
	return results, nil
}
