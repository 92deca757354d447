package driven

import "context"

// VectorIndex provides semantic similarity search over stored embedding
// vectors. Content without an embedding is never returned.
type VectorIndex interface {
	// Search finds the k stored vectors most similar to the query vector.
	// Vectors whose length differs from the query are skipped.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ContentID is the matched content.
	ContentID string

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
