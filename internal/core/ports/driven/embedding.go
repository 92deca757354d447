package driven

import "context"

// EmbeddingService generates vector embeddings from text with one model.
// This is an optional service - when nil, semantic search is disabled.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, bge-m3)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// An empty vector means the model has nothing for this text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
