package memory

import (
	"context"
	"sort"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex scans the embeddings held by a ContentStore.
type VectorIndex struct {
	store *ContentStore
}

// NewVectorIndex creates a vector index reading from store.
func NewVectorIndex(store *ContentStore) *VectorIndex {
	return &VectorIndex{store: store}
}

// Search returns the k items most similar to query, best first.
// Embeddings of a different dimension are skipped.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, nil
	}

	contents, err := v.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var hits []driven.VectorHit
	for i := range contents {
		vector := contents[i].EmbeddingVector
		if len(vector) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ContentID:  contents[i].ID,
			Similarity: domain.CosineSimilarity(query, vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ContentID < hits[j].ContentID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
