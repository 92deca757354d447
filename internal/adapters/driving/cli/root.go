// Package cli provides the command-line interface for Stash.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// annotationNoServices marks commands that run without the library.
const annotationNoServices = "stash/no-services"

// Options are the global flags that shape how services are built.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.stash.
	ConfigDir string

	// Ephemeral keeps the library in memory for this run only.
	Ephemeral bool
}

// Refresher is anything that can reload the library.
type Refresher interface {
	Refresh()
}

// Services are the services commands run against. Optional services
// are nil when their feature is not configured.
type Services struct {
	Library  driving.LibraryService
	Browse   driving.BrowseService
	Settings driving.SettingsService
	Enricher driving.EnrichmentService

	// NewSession starts a library session for long-running commands.
	NewSession func() driving.Session

	// Background returns the tasks that keep a session fresh, such as the
	// database watcher and the refresh scheduler.
	Background func(target Refresher) []driving.Scheduler

	// Close releases resources held by the services.
	Close func() error
}

// ServiceBuilder creates the services for one command run.
type ServiceBuilder func(opts Options) (*Services, error)

var (
	verbose   bool
	configDir string
	ephemeral bool

	buildServices ServiceBuilder
	current       *Services

	libraryService    driving.LibraryService
	browseService     driving.BrowseService
	settingsService   driving.SettingsService
	enrichmentService driving.EnrichmentService
)

var rootCmd = &cobra.Command{
	Use:   "stash",
	Short: "Save links and find them again",
	Long: `Stash keeps a local library of saved links.

Links are classified when saved (video, place, shopping, article, social),
enriched with page titles, descriptions and thumbnails in the background,
and searchable by keyword and, optionally, by meaning.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.stash)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the library in memory for this run only")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServiceBuilder sets how services are created before each command.
func SetServiceBuilder(builder ServiceBuilder) {
	buildServices = builder
}

// Execute runs the root command. Services are released even when the
// command fails, since cobra skips post-run hooks on error.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardownServices(rootCmd, nil); err == nil {
		err = closeErr
	}
	return err
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] != "" {
		return nil
	}
	if buildServices == nil {
		return errors.New("services not configured")
	}
	if err := teardownServices(cmd, nil); err != nil {
		logger.Warn("Closing previous services: %v", err)
	}

	svc, err := buildServices(Options{ConfigDir: configDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	current = svc
	libraryService = svc.Library
	browseService = svc.Browse
	settingsService = svc.Settings
	enrichmentService = svc.Enricher
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	svc := current
	current = nil
	libraryService = nil
	browseService = nil
	settingsService = nil
	enrichmentService = nil

	logger.Sync()
	if svc == nil || svc.Close == nil {
		return nil
	}
	return svc.Close()
}

func requireLibrary() error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	return nil
}
