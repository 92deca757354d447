package driving

import (
	"context"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set parses and stores a single dot-notation key.
	Set(key, value string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig checks the embedding settings by pinging
	// every configured model.
	ValidateEmbeddingConfig(ctx context.Context) error
}
