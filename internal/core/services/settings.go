package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDataDir           = "storage.data_dir"
	keyEnrichConcurrency = "enrichment.concurrency"
	keyEnrichRate        = "enrichment.rate_per_second"
	keyEnrichTimeout     = "enrichment.timeout"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedPrimary      = "embedding.primary_model"
	keyEmbedPrimaryLang  = "embedding.primary_language"
	keyEmbedFallback     = "embedding.fallback_model"
	keySearchLimit       = "search.limit"
	keySearchSemantic    = "search.semantic"
	keyRefreshInterval   = "refresh.interval"
)

// keyKind describes how a settable key is parsed from text.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

var settableKeys = map[string]keyKind{
	keyDataDir:           kindString,
	keyEnrichConcurrency: kindInt,
	keyEnrichRate:        kindFloat,
	keyEnrichTimeout:     kindDuration,
	keyEmbedProvider:     kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedPrimary:      kindString,
	keyEmbedPrimaryLang:  kindString,
	keyEmbedFallback:     kindString,
	keySearchLimit:       kindInt,
	keySearchSemantic:    kindBool,
	keyRefreshInterval:   kindDuration,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service.
// validator may be nil, in which case embedding checks always pass.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
		Enrichment: domain.EnrichmentSettings{
			Concurrency:   s.getInt(keyEnrichConcurrency, defaults.Enrichment.Concurrency),
			RatePerSecond: s.getFloat(keyEnrichRate, defaults.Enrichment.RatePerSecond),
			Timeout:       s.getDuration(keyEnrichTimeout, defaults.Enrichment.Timeout),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:        s.getProvider(defaults.Embedding.Provider),
			BaseURL:         s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			PrimaryModel:    s.getString(keyEmbedPrimary, defaults.Embedding.PrimaryModel),
			PrimaryLanguage: s.getString(keyEmbedPrimaryLang, defaults.Embedding.PrimaryLanguage),
			FallbackModel:   s.getString(keyEmbedFallback, defaults.Embedding.FallbackModel),
		},
		Search: domain.SearchSettings{
			Limit:    s.getInt(keySearchLimit, defaults.Search.Limit),
			Semantic: s.getBool(keySearchSemantic, defaults.Search.Semantic),
		},
		Refresh: domain.RefreshSettings{
			Interval: s.getDuration(keyRefreshInterval, defaults.Refresh.Interval),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.Storage.DataDir},
		{keyEnrichConcurrency, settings.Enrichment.Concurrency},
		{keyEnrichRate, settings.Enrichment.RatePerSecond},
		{keyEnrichTimeout, settings.Enrichment.Timeout.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedPrimary, settings.Embedding.PrimaryModel},
		{keyEmbedPrimaryLang, settings.Embedding.PrimaryLanguage},
		{keyEmbedFallback, settings.Embedding.FallbackModel},
		{keySearchLimit, settings.Search.Limit},
		{keySearchSemantic, settings.Search.Semantic},
		{keyRefreshInterval, settings.Refresh.Interval.String()},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration like 30s", domain.ErrInvalidInput, key)
		}
		parsed = value
	default:
		parsed = value
	}

	if err := checkValue(key, parsed); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// checkValue applies the per-key rules that Validate enforces on the whole set.
func checkValue(key string, value any) error {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	case float64:
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	case string:
		if key == keyEmbedProvider && !domain.AIProvider(v).IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, v)
		}
	}
	return nil
}

// Validate checks the stored settings.
func (s *SettingsService) Validate() error {
	if raw := s.configStore.GetString(keyEmbedProvider); !domain.AIProvider(raw).IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, raw)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Enrichment.Concurrency < 0 {
		return fmt.Errorf("%w: enrichment concurrency must not be negative", domain.ErrInvalidInput)
	}
	if settings.Enrichment.RatePerSecond < 0 {
		return fmt.Errorf("%w: enrichment rate must not be negative", domain.ErrInvalidInput)
	}
	if settings.Search.Limit < 0 {
		return fmt.Errorf("%w: search limit must not be negative", domain.ErrInvalidInput)
	}
	if settings.Search.Semantic && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: semantic search requires an embedding provider", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig checks the current embedding settings by pinging
// every configured model.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(ctx, &settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
