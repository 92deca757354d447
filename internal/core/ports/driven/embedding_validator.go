package driven

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// EmbeddingValidator checks embedding provider settings by testing
// connectivity to every configured model.
type EmbeddingValidator interface {
	// ValidateEmbedding returns nil if the settings work or embedding is
	// not configured.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
}
