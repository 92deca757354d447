package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stash/internal/core/domain"
)

var (
	listFilter string
	listQuery  string
	listJSON   bool
	searchJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved content",
	Long: `List saved content, newest first.

Use --filter to narrow to one category grouping and --query to search;
with a query, results are in relevance order. A search that fails shows
no results; run with --verbose to see why.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search saved content",
	Long: `Searches titles, summaries and URLs of saved content.
Uses keyword (BM25) ranking, fused with semantic similarity when
search.semantic is enabled and an embedding provider is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all",
		"category filter: "+filterNames())
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "free-text query")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}

func filterNames() string {
	filters := domain.AllFilters()
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := requireBrowse(); err != nil {
		return err
	}

	filter, err := domain.ParseFilter(listFilter)
	if err != nil {
		return fmt.Errorf("unknown filter %q (want one of %s): %w", listFilter, filterNames(), err)
	}

	contents, err := browseService.Browse(cmd.Context(), filter, listQuery)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		return outputContentsJSON(cmd, contents)
	}
	outputContentsTable(cmd, contents)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireBrowse(); err != nil {
		return err
	}

	var results []domain.SavedContent
	if strings.TrimSpace(args[0]) != "" {
		var err error
		results, err = browseService.Browse(cmd.Context(), domain.FilterAll, args[0])
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	}

	if searchJSON {
		return outputContentsJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	outputContentsTable(cmd, results)
	return nil
}

func requireBrowse() error {
	if browseService == nil {
		return errors.New("browse service not configured")
	}
	return nil
}
