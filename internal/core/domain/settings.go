package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables the embedding path.
	AIProviderNone AIProvider = ""

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama:
		return true
	default:
		return false
	}
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "Disabled"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DataDir is the directory holding the library database.
	// Empty means ~/.stash/data.
	DataDir string
}

// EnrichmentSettings holds metadata enrichment configuration.
type EnrichmentSettings struct {
	// Concurrency is the maximum number of fetches in flight.
	Concurrency int

	// RatePerSecond throttles fetch starts. Zero disables throttling.
	RatePerSecond float64

	// Timeout bounds a single fetch. Zero means no timeout.
	Timeout time.Duration
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// PrimaryModel is tried first for text in PrimaryLanguage.
	PrimaryModel string

	// PrimaryLanguage is a BCP 47 tag, e.g. "ko".
	PrimaryLanguage string

	// FallbackModel is tried when the primary model yields nothing.
	FallbackModel string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider == AIProviderNone || !e.Provider.IsValid() {
		return false
	}
	return e.PrimaryModel != "" || e.FallbackModel != ""
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Limit caps the number of results returned.
	Limit int

	// Semantic merges embedding similarity into keyword results.
	Semantic bool
}

// RefreshSettings holds periodic reload configuration.
type RefreshSettings struct {
	// Interval between automatic reloads. Zero disables the scheduler.
	Interval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage    StorageSettings
	Enrichment EnrichmentSettings
	Embedding  EmbeddingSettings
	Search     SearchSettings
	Refresh    RefreshSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding path is left unconfigured by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Enrichment: EnrichmentSettings{
			Concurrency:   4,
			RatePerSecond: 2,
			Timeout:       15 * time.Second,
		},
		Embedding: EmbeddingSettings{
			BaseURL:         "http://localhost:11434",
			PrimaryLanguage: "ko",
			FallbackModel:   "nomic-embed-text",
		},
		Search: SearchSettings{
			Limit: 50,
		},
	}
}
