package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	mu     sync.Mutex
	hits   []driven.SearchHit
	err    error
	limits []int
}

var _ driven.SearchEngine = (*mockSearchEngine)(nil)

func (m *mockSearchEngine) Search(_ context.Context, _ string, limit int) ([]driven.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu    sync.Mutex
	hits  []driven.VectorHit
	err   error
	query []float32
}

var _ driven.VectorIndex = (*mockVectorIndex)(nil)

func (m *mockVectorIndex) Search(_ context.Context, query []float32, _ int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func keywordHits(ids ...string) []driven.SearchHit {
	hits := make([]driven.SearchHit, len(ids))
	for i, id := range ids {
		hits[i] = driven.SearchHit{ContentID: id, Score: float64(len(ids) - i)}
	}
	return hits
}

func vectorHits(ids ...string) []driven.VectorHit {
	hits := make([]driven.VectorHit, len(ids))
	for i, id := range ids {
		hits[i] = driven.VectorHit{ContentID: id, Similarity: 1 - float64(i)/10}
	}
	return hits
}

func TestSearchService_KeywordOnly(t *testing.T) {
	engine := &mockSearchEngine{hits: keywordHits("C", "A", "gone")}
	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})

	results, err := svc.Search(context.Background(), "  cafe ")

	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, ids(results))
	assert.Equal(t, []int{100}, engine.limits)
}

func TestSearchService_BlankQuery(t *testing.T) {
	engine := &mockSearchEngine{hits: keywordHits("A")}
	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})

	results, err := svc.Search(context.Background(), "   ")

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Empty(t, engine.limits)
}

func TestSearchService_AppliesLimit(t *testing.T) {
	engine := &mockSearchEngine{hits: keywordHits("A", "B", "C", "D")}
	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{Limit: 2})

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(results))
	assert.Equal(t, []int{4}, engine.limits)
}

func TestSearchService_EngineFailure(t *testing.T) {
	engine := &mockSearchEngine{err: errBoom}
	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})

	_, err := svc.Search(context.Background(), "q")

	assert.ErrorIs(t, err, errBoom)
}

func TestSearchService_NoEngine(t *testing.T) {
	svc := NewSearchService(newFaultyStore(library()...), nil, domain.SearchSettings{})

	_, err := svc.Search(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestSearchService_HydrationFailure(t *testing.T) {
	store := newFaultyStore(library()...)
	store.setFetchErr(domain.ErrStorageFailure)
	svc := NewSearchService(store, &mockSearchEngine{hits: keywordHits("A")}, domain.SearchSettings{})

	_, err := svc.Search(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestSearchService_NoHitsSkipsHydration(t *testing.T) {
	store := newFaultyStore(library()...)
	svc := NewSearchService(store, &mockSearchEngine{}, domain.SearchSettings{})

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, store.fetches())
}

func TestSearchService_HybridFusesBothLists(t *testing.T) {
	engine := &mockSearchEngine{hits: keywordHits("A", "B", "C")}
	vectors := &mockVectorIndex{hits: vectorHits("C", "D", "A")}
	model := &mockEmbeddingService{model: "m", vector: []float32{0.1, 0.2}}

	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})
	svc.EnableSemantic(vectors, NewEmbedder(nil, "", model))

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	// A: 1/61 + 1/63, C: 1/63 + 1/61, B: 1/62, D: 1/62.
	// Ties keep first-seen order.
	assert.Equal(t, []string{"A", "C", "B", "D"}, ids(results))
	assert.Equal(t, []float32{0.1, 0.2}, vectors.query)
}

func TestSearchService_HybridDegradesToKeyword(t *testing.T) {
	engine := &mockSearchEngine{hits: keywordHits("B", "A")}
	vectors := &mockVectorIndex{err: errBoom}
	model := &mockEmbeddingService{model: "m", vector: []float32{1}}

	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})
	svc.EnableSemantic(vectors, NewEmbedder(nil, "", model))

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ids(results))
}

func TestSearchService_HybridDegradesToVector(t *testing.T) {
	engine := &mockSearchEngine{err: errBoom}
	vectors := &mockVectorIndex{hits: vectorHits("E", "D")}
	model := &mockEmbeddingService{model: "m", vector: []float32{1}}

	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})
	svc.EnableSemantic(vectors, NewEmbedder(nil, "", model))

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"E", "D"}, ids(results))
}

func TestSearchService_HybridBothFail(t *testing.T) {
	engine := &mockSearchEngine{err: errBoom}
	model := &mockEmbeddingService{model: "m", err: errBoom}

	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})
	svc.EnableSemantic(&mockVectorIndex{}, NewEmbedder(nil, "", model))

	_, err := svc.Search(context.Background(), "q")

	assert.ErrorIs(t, err, errBoom)
}

func TestSearchService_EmptyQueryEmbeddingUsesKeywordOnly(t *testing.T) {
	engine := &mockSearchEngine{hits: keywordHits("A")}
	vectors := &mockVectorIndex{hits: vectorHits("E")}
	model := &mockEmbeddingService{model: "m"}

	svc := NewSearchService(newFaultyStore(library()...), engine, domain.SearchSettings{})
	svc.EnableSemantic(vectors, NewEmbedder(nil, "", model))

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(results))
	assert.Nil(t, vectors.query)
}

func TestReciprocalRankFusion(t *testing.T) {
	a := []scoredID{{id: "x"}, {id: "y"}}
	b := []scoredID{{id: "y"}, {id: "z"}}

	fused := reciprocalRankFusion(60, a, b)

	require.Len(t, fused, 3)
	assert.Equal(t, "y", fused[0].id)
	assert.InDelta(t, 1.0/62+1.0/61, fused[0].score, 1e-12)
	assert.Equal(t, "x", fused[1].id)
	assert.Equal(t, "z", fused[2].id)
}

func TestReciprocalRankFusion_Empty(t *testing.T) {
	assert.Empty(t, reciprocalRankFusion(60))
	assert.Empty(t, reciprocalRankFusion(60, nil, []scoredID{}))
}

func TestSearchService_ResultsAreCurrentContent(t *testing.T) {
	store := newFaultyStore(library()...)
	svc := NewSearchService(store, &mockSearchEngine{hits: keywordHits("A")}, domain.SearchSettings{})

	results, err := svc.Search(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, strings.HasPrefix(results[0].URLString(), "https://blog.example"))
}
