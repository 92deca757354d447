package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// maxTitleWidth truncates long titles in table output.
const maxTitleWidth = 48

// contentJSON is the JSON form of one saved item.
type contentJSON struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	URL       string            `json:"url"`
	Category  string            `json:"category"`
	CreatedAt time.Time         `json:"created_at"`
	Thumbnail string            `json:"thumbnail,omitempty"`
	Summary   string            `json:"summary,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedded  bool              `json:"embedded"`
}

func toContentJSON(c *domain.SavedContent) contentJSON {
	out := contentJSON{
		ID:        c.ID,
		Title:     c.Title,
		URL:       c.URLString(),
		Category:  c.Category.String(),
		CreatedAt: c.CreatedAt.UTC(),
		Metadata:  c.Metadata,
		Embedded:  c.HasEmbedding(),
	}
	if c.ThumbnailURL != nil {
		out.Thumbnail = c.ThumbnailURL.String()
	}
	if c.Summary != nil {
		out.Summary = *c.Summary
	}
	return out
}

func outputContentsJSON(cmd *cobra.Command, contents []domain.SavedContent) error {
	items := make([]contentJSON, len(contents))
	for i := range contents {
		items[i] = toContentJSON(&contents[i])
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal contents: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputContentsTable(cmd *cobra.Command, contents []domain.SavedContent) {
	if len(contents) == 0 {
		cmd.Println("No saved content.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Category", "Title", "Saved", "URL"})
	for i := range contents {
		c := &contents[i]
		tw.AppendRow(table.Row{
			c.ID,
			c.Category.Description(),
			text.Trim(c.Title, maxTitleWidth),
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.URLString(),
		})
	}
	tw.AppendFooter(table.Row{"", "", fmt.Sprintf("%d item(s)", len(contents))})
	tw.Render()
}

// outputBulkDelete prints what a bulk delete did and returns its error.
func outputBulkDelete(cmd *cobra.Command, result domain.BulkDeleteResult) error {
	cmd.Printf("Deleted %d item(s).\n", len(result.Deleted))
	err := result.Err()
	if err == nil {
		return nil
	}

	var bulkErr *domain.BulkDeleteError
	if errors.As(err, &bulkErr) {
		for _, id := range bulkErr.IDs() {
			cmd.Printf("  failed: %s: %v\n", id, bulkErr.Failed[id])
		}
	}
	return err
}
