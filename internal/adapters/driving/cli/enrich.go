package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch page metadata for saved content",
	Long: `Fetch titles, descriptions and thumbnails for every item that has not
been enriched yet. Items whose page cannot be fetched are left as they are
and retried on the next run.`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for semantic search",
	Long: `Compute embedding vectors for saved content that has none.

Requires an embedding provider (see "stash config set embedding.provider ollama").`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(embedCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	if enrichmentService == nil {
		return errors.New("enrichment service not configured")
	}

	report, err := enrichmentService.EnrichAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	if report.Attempted == 0 {
		cmd.Println("Nothing to enrich.")
		return nil
	}
	cmd.Printf("Enriched %d of %d item(s)", report.Enriched, report.Attempted)
	if report.Failed > 0 {
		cmd.Printf(", %d failed (run with --verbose for details)", report.Failed)
	}
	cmd.Println()
	return nil
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	report, err := libraryService.EmbedMissing(cmd.Context())
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	if report.Attempted == 0 {
		cmd.Println("Every item already has an embedding.")
		return nil
	}
	cmd.Printf("Embedded %d of %d item(s)", report.Embedded, report.Attempted)
	if report.Empty > 0 {
		cmd.Printf(", %d with no vector", report.Empty)
	}
	if report.Failed > 0 {
		cmd.Printf(", %d failed", report.Failed)
	}
	cmd.Println()
	return nil
}
