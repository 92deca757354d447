package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/services"
)

func TestEnrichCmd_EnrichesPending(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	saved := env.save(t, "https://example.com/article")

	out, err := execute(t, "enrich")

	require.NoError(t, err)
	assert.Contains(t, out, "Enriched 1 of 1 item(s)")

	contents, err := env.store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, saved.ID, contents[0].ID)
	assert.Equal(t, "Fetched example.com", contents[0].Title)
	assert.Equal(t, "Example", contents[0].Metadata[domain.MetadataKeySiteName])
}

func TestEnrichCmd_NothingToDo(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "enrich")

	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to enrich.")
}

func TestEnrichCmd_ReportsFailures(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	env.save(t, "https://example.com/a")
	env.save(t, "https://example.com/b")

	failing := services.NewEnricher(stubFetcher{err: domain.ErrMetadataUnavailable}, env.store,
		domain.EnrichmentSettings{Concurrency: 1})
	SetServiceBuilder(func(Options) (*Services, error) {
		return &Services{Library: env.library, Enricher: failing}, nil
	})

	out, err := execute(t, "enrich")

	require.NoError(t, err)
	assert.Contains(t, out, "Enriched 0 of 2 item(s), 2 failed")
}

func TestEnrichCmd_NotConfigured(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	SetServiceBuilder(func(Options) (*Services, error) {
		return &Services{Library: env.library}, nil
	})

	_, err := execute(t, "enrich")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrichment service not configured")
}

// fixedEmbedding returns the same vector for any non-blank text.
type fixedEmbedding struct {
	err error
}

var _ driven.EmbeddingService = fixedEmbedding{}

func (e fixedEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e fixedEmbedding) ModelName() string { return "fixed" }

func (e fixedEmbedding) Ping(context.Context) error { return e.err }

func (e fixedEmbedding) Close() error { return nil }

func TestEmbedCmd_EmbedsMissing(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()

	library := services.NewLibraryService(env.store, services.NewEmbedder(nil, "", fixedEmbedding{}))
	SetServiceBuilder(func(Options) (*Services, error) {
		return &Services{Library: library}, nil
	})
	env.save(t, "https://example.com/a")
	env.save(t, "https://example.com/b")

	out, err := execute(t, "embed")

	require.NoError(t, err)
	assert.Contains(t, out, "Embedded 2 of 2 item(s)")

	out, err = execute(t, "embed")

	require.NoError(t, err)
	assert.Contains(t, out, "Every item already has an embedding.")
}

func TestEmbedCmd_ReportsFailures(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()

	library := services.NewLibraryService(env.store,
		services.NewEmbedder(nil, "", fixedEmbedding{err: errors.New("model offline")}))
	SetServiceBuilder(func(Options) (*Services, error) {
		return &Services{Library: library}, nil
	})
	env.save(t, "https://example.com/a")

	out, err := execute(t, "embed")

	require.NoError(t, err)
	assert.Contains(t, out, "Embedded 0 of 1 item(s), 1 failed")
}

func TestEmbedCmd_NoEmbedder(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "embed")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
