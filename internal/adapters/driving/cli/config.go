package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stash/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

Keys use dot notation, e.g. enrichment.concurrency or embedding.provider.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show settings",
	Long:  `Show every setting, or the value of a single key.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and test the embedding provider",
	Long: `Validate the stored settings and, when an embedding provider is
configured, check that every configured model is reachable.`,
	Args: cobra.NoArgs,
	RunE: runConfigCheck,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

// settingRow is one key and its effective value.
type settingRow struct {
	key   string
	value string
}

func settingRows(s *domain.AppSettings) []settingRow {
	return []settingRow{
		{"storage.data_dir", s.Storage.DataDir},
		{"enrichment.concurrency", strconv.Itoa(s.Enrichment.Concurrency)},
		{"enrichment.rate_per_second", strconv.FormatFloat(s.Enrichment.RatePerSecond, 'g', -1, 64)},
		{"enrichment.timeout", s.Enrichment.Timeout.String()},
		{"embedding.provider", s.Embedding.Provider.String()},
		{"embedding.base_url", s.Embedding.BaseURL},
		{"embedding.primary_model", s.Embedding.PrimaryModel},
		{"embedding.primary_language", s.Embedding.PrimaryLanguage},
		{"embedding.fallback_model", s.Embedding.FallbackModel},
		{"search.limit", strconv.Itoa(s.Search.Limit)},
		{"search.semantic", strconv.FormatBool(s.Search.Semantic)},
		{"refresh.interval", s.Refresh.Interval.String()},
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	rows := settingRows(settings)

	if len(args) == 1 {
		for _, row := range rows {
			if row.key == args[0] {
				cmd.Println(row.value)
				return nil
			}
		}
		return fmt.Errorf("unknown setting %q: %w", args[0], domain.ErrInvalidInput)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Key", "Value"})
	for _, row := range rows {
		value := row.value
		if value == "" {
			value = "(not set)"
		}
		tw.AppendRow(table.Row{row.key, value})
	}
	tw.Render()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.Embedding.IsConfigured() {
		cmd.Println("Settings OK. Embedding is disabled.")
		return nil
	}

	if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
		return fmt.Errorf("embedding provider check failed: %w", err)
	}
	cmd.Printf("Settings OK. Embedding provider %s is reachable.\n", settings.Embedding.Provider.Description())
	return nil
}
