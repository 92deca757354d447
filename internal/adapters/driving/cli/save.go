package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save [url]",
	Short: "Save a link",
	Long: `Save a link to the library.

The category is detected from the URL once and never changes. Page title,
description and thumbnail are filled in later by enrichment.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	content, err := libraryService.SaveURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	cmd.Printf("Saved %s\n", content.ID)
	cmd.Printf("  Title:    %s\n", content.Title)
	cmd.Printf("  Category: %s\n", content.Category.Description())
	return nil
}
