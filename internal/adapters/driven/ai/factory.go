// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/stash/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Models holds the embedding services named in the settings.
// Either may be nil, but not both.
type Models struct {
	Primary  driven.EmbeddingService
	Fallback driven.EmbeddingService
}

// All returns the configured services, primary first.
func (m *Models) All() []driven.EmbeddingService {
	var out []driven.EmbeddingService
	if m.Primary != nil {
		out = append(out, m.Primary)
	}
	if m.Fallback != nil {
		out = append(out, m.Fallback)
	}
	return out
}

// Close releases all resources held by the models.
func (m *Models) Close() error {
	var errs []error
	for _, svc := range m.All() {
		errs = append(errs, svc.Close())
	}
	return errors.Join(errs...)
}

// CreateEmbeddingServices creates a service for the primary and fallback
// models. Returns nil if embedding is not configured.
func CreateEmbeddingServices(settings *domain.EmbeddingSettings) (*Models, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		models := &Models{}
		if settings.PrimaryModel != "" {
			models.Primary = createOllamaEmbedding(settings, settings.PrimaryModel)
		}
		if settings.FallbackModel != "" {
			models.Fallback = createOllamaEmbedding(settings, settings.FallbackModel)
		}
		return models, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// ValidateEmbeddingConfig creates every configured model and pings it.
// Failures name the model and wrap domain.ErrEmbeddingUnavailable.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	models, err := CreateEmbeddingServices(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if models == nil {
		return nil
	}
	defer models.Close() //nolint:errcheck // idle connections only

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var errs []error
	for _, svc := range models.All() {
		if err := svc.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("model %s: %w", svc.ModelName(), err))
		}
	}
	return errors.Join(errs...)
}

// createOllamaEmbedding creates an Ollama embedding service for one model.
func createOllamaEmbedding(settings *domain.EmbeddingSettings, model string) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   model,
	})
}
