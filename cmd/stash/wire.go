package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/stash/internal/adapters/driven/ai"
	"github.com/custodia-labs/stash/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stash/internal/adapters/driven/metadata/html"
	"github.com/custodia-labs/stash/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stash/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stash/internal/adapters/driven/watch"
	"github.com/custodia-labs/stash/internal/adapters/driving/cli"
	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/core/services"
	"github.com/custodia-labs/stash/internal/logger"
)

// backend is the persistence side of one run.
type backend struct {
	store   driven.ContentStore
	engine  driven.SearchEngine
	vectors driven.VectorIndex

	// dataDir and files are watched for writes by other processes.
	// Empty for in-memory runs.
	dataDir string
	files   []string

	close func() error
}

// buildServices wires adapters and services by hand.
func buildServices(opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("Invalid settings: %v", err)
	}

	back, err := openBackend(opts.Ephemeral, settings.Storage)
	if err != nil {
		return nil, err
	}

	embedder, models, err := newEmbedder(settings.Embedding)
	if err != nil {
		_ = back.close()
		return nil, err
	}

	fetcher := html.NewFetcher(html.Config{Timeout: settings.Enrichment.Timeout})
	enricher := services.NewEnricher(fetcher, back.store, settings.Enrichment)
	library := services.NewLibraryService(back.store, embedder)
	search := services.NewSearchService(back.store, back.engine, settings.Search)
	if settings.Search.Semantic {
		if embedder != nil {
			search.EnableSemantic(back.vectors, embedder)
		} else {
			logger.Warn("Semantic search enabled without an embedding provider; using keyword search")
		}
	}

	refreshInterval := settings.Refresh.Interval
	return &cli.Services{
		Library:  library,
		Browse:   services.NewBrowser(library, search),
		Settings: settingsService,
		Enricher: enricher,
		NewSession: func() driving.Session {
			return services.NewSession(back.store, search, enricher)
		},
		Background: func(target cli.Refresher) []driving.Scheduler {
			tasks := []driving.Scheduler{services.NewScheduler(refreshInterval, target)}
			if back.dataDir != "" {
				tasks = append(tasks, watch.NewWatcher(watch.Config{
					Dir:   back.dataDir,
					Files: back.files,
				}, target))
			}
			return tasks
		},
		Close: func() error {
			var errs []error
			if models != nil {
				errs = append(errs, models.Close())
			}
			errs = append(errs, back.close())
			return errors.Join(errs...)
		},
	}, nil
}

func openBackend(ephemeral bool, settings domain.StorageSettings) (*backend, error) {
	if ephemeral {
		store := memory.NewContentStore()
		return &backend{
			store:   store,
			engine:  memory.NewSearchEngine(store),
			vectors: memory.NewVectorIndex(store),
			close:   func() error { return nil },
		}, nil
	}

	db, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	logger.Debug("Library database: %s", db.Path())
	return &backend{
		store:   db.ContentStore(),
		engine:  db.SearchEngine(),
		vectors: db.VectorIndex(),
		dataDir: filepath.Dir(db.Path()),
		files:   []string{sqlite.DatabaseFile, sqlite.DatabaseFile + "-wal"},
		close:   db.Close,
	}, nil
}

// newEmbedder returns a nil embedder when no embedding provider is configured.
func newEmbedder(settings domain.EmbeddingSettings) (*services.Embedder, *ai.Models, error) {
	models, err := ai.CreateEmbeddingServices(&settings)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedding services: %w", err)
	}
	if models == nil {
		return nil, nil, nil
	}
	return services.NewEmbedder(models.Primary, settings.PrimaryLanguage, models.Fallback), models, nil
}
