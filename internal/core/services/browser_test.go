package services

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/logger"
)

func browseLibrary() []domain.SavedContent {
	return []domain.SavedContent{
		enriched("A", "https://blog.example/coffee", domain.CategoryWeb, 0),
		enriched("B", "https://youtu.be/coffee", domain.CategoryVideo, 1),
		enriched("C", "https://blog.example/tea", domain.CategoryWeb, 2),
	}
}

// readySearch returns a search whose answer for query is available at once.
func readySearch(query string, results []domain.SavedContent, err error) *gatedSearch {
	search := newGatedSearch()
	search.results[query] = results
	search.errs[query] = err
	search.release(query)
	return search
}

func TestBrowser_Browse(t *testing.T) {
	ctx := context.Background()

	t.Run("without a query lists newest first through the filter", func(t *testing.T) {
		browser := NewBrowser(newTestLibrary(newFaultyStore(browseLibrary()...), nil), nil)

		all, err := browser.Browse(ctx, domain.FilterAll, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "B", "A"}, ids(all))

		videos, err := browser.Browse(ctx, domain.FilterVideo, "  ")
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, ids(videos))
	})

	t.Run("with a query keeps relevance order and prefers loaded copies", func(t *testing.T) {
		contents := browseLibrary()
		stale := contents[0]
		stale.Title = "stale"
		search := readySearch("coffee", []domain.SavedContent{stale, contents[1]}, nil)
		browser := NewBrowser(newTestLibrary(newFaultyStore(contents...), nil), search)

		visible, err := browser.Browse(ctx, domain.FilterAll, " coffee ")

		require.NoError(t, err)
		assert.Equal(t, []string{"coffee"}, search.searched())
		assert.Equal(t, []string{"A", "B"}, ids(visible))
		assert.Equal(t, "A", visible[0].Title)
	})

	t.Run("query results pass through the filter", func(t *testing.T) {
		contents := browseLibrary()
		search := readySearch("coffee", []domain.SavedContent{contents[0], contents[1]}, nil)
		browser := NewBrowser(newTestLibrary(newFaultyStore(contents...), nil), search)

		visible, err := browser.Browse(ctx, domain.FilterVideo, "coffee")

		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, ids(visible))
	})

	t.Run("a failed search shows no results and logs a warning", func(t *testing.T) {
		var logs bytes.Buffer
		logger.SetOutput(&logs)
		logger.SetVerbose(true)
		t.Cleanup(func() {
			logger.SetVerbose(false)
			logger.SetOutput(os.Stderr)
		})

		search := readySearch("coffee", browseLibrary()[:1], errBoom)
		browser := NewBrowser(newTestLibrary(newFaultyStore(browseLibrary()...), nil), search)

		visible, err := browser.Browse(ctx, domain.FilterAll, "coffee")

		require.NoError(t, err)
		assert.Empty(t, visible)
		assert.Contains(t, logs.String(), `Search for "coffee" failed`)
	})

	t.Run("a query without a search service shows no results", func(t *testing.T) {
		browser := NewBrowser(newTestLibrary(newFaultyStore(browseLibrary()...), nil), nil)

		visible, err := browser.Browse(ctx, domain.FilterAll, "coffee")

		require.NoError(t, err)
		assert.Empty(t, visible)
	})

	t.Run("a failed load is returned", func(t *testing.T) {
		store := newFaultyStore(browseLibrary()...)
		store.setFetchErr(errBoom)
		search := readySearch("coffee", nil, nil)
		browser := NewBrowser(newTestLibrary(store, nil), search)

		_, err := browser.Browse(ctx, domain.FilterAll, "coffee")

		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, search.searched())
	})
}
