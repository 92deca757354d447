package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorIndex_Search(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()

	a := newContent(t, "a", "https://a.example", "A")
	a.EmbeddingVector = []float32{1, 0}
	b := newContent(t, "b", "https://b.example", "B")
	b.EmbeddingVector = []float32{0.7, 0.7}
	c := newContent(t, "c", "https://c.example", "C")
	c.EmbeddingVector = []float32{-1, 0}
	skipped := newContent(t, "d", "https://d.example", "D")
	skipped.EmbeddingVector = []float32{1, 0, 0}
	none := newContent(t, "e", "https://e.example", "E")

	require.NoError(t, store.Save(ctx, a))
	require.NoError(t, store.Save(ctx, b))
	require.NoError(t, store.Save(ctx, c))
	require.NoError(t, store.Save(ctx, skipped))
	require.NoError(t, store.Save(ctx, none))

	index := NewVectorIndex(store)

	hits, err := index.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].ContentID)
	assert.Equal(t, "b", hits[1].ContentID)
	assert.Equal(t, "c", hits[2].ContentID)
	assert.InDelta(t, -1, hits[2].Similarity, 1e-9)

	top, err := index.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestVectorIndex_EmptyQuery(t *testing.T) {
	hits, err := NewVectorIndex(NewContentStore()).Search(context.Background(), nil, 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}
