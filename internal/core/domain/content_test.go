package domain

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func TestContentCategory_IsValid(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, c.IsValid(), c.String())
	}
	assert.False(t, ContentCategory("youtube").IsValid())
	assert.False(t, ContentCategory("").IsValid())
}

func TestContentCategory_Description(t *testing.T) {
	assert.Equal(t, "Place", CategoryMapPlaceA.Description())
	assert.Equal(t, "Place", CategoryMapPlaceB.Description())
	assert.Equal(t, "Video", CategoryVideo.Description())
	assert.Equal(t, "Unknown", ContentCategory("x").Description())
}

func TestSavedContent_NeedsEnrichment(t *testing.T) {
	tests := []struct {
		name     string
		content  SavedContent
		expected bool
	}{
		{"sparse", SavedContent{Metadata: map[string]string{}}, true},
		{"nil metadata", SavedContent{}, true},
		{"has metadata", SavedContent{Metadata: map[string]string{"siteName": "x"}}, false},
		{"has thumbnail", SavedContent{ThumbnailURL: mustURL(t, "https://img.example.com/a.png")}, false},
		{"has summary", SavedContent{Summary: strPtr("")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.content.NeedsEnrichment())
		})
	}
}

func TestSavedContent_Merge(t *testing.T) {
	content := SavedContent{
		ID:        "c-1",
		Title:     "example.com",
		SourceURL: mustURL(t, "https://example.com/a"),
		Category:  CategoryWeb,
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		Metadata:  map[string]string{"existing": "kept"},
	}

	content.Merge(ContentMetadata{
		Title:       "An Article",
		Description: "About things",
		ImageURL:    mustURL(t, "https://example.com/og.png"),
		SiteName:    strPtr("Example"),
	})

	assert.Equal(t, "An Article", content.Title)
	require.NotNil(t, content.Summary)
	assert.Equal(t, "About things", *content.Summary)
	require.NotNil(t, content.ThumbnailURL)
	assert.Equal(t, "https://example.com/og.png", content.ThumbnailURL.String())
	assert.Equal(t, map[string]string{"existing": "kept", "siteName": "Example"}, content.Metadata)

	// Frozen fields are untouched.
	assert.Equal(t, "c-1", content.ID)
	assert.Equal(t, CategoryWeb, content.Category)
	assert.Equal(t, "https://example.com/a", content.URLString())
}

func TestSavedContent_Merge_NoOptionalFields(t *testing.T) {
	content := SavedContent{ID: "c-1"}

	content.Merge(ContentMetadata{Title: "T", Description: "D"})

	assert.Equal(t, "T", content.Title)
	require.NotNil(t, content.Summary)
	assert.Nil(t, content.ThumbnailURL)
	assert.Nil(t, content.Metadata)
	assert.False(t, content.NeedsEnrichment())
}

func TestSavedContent_Clone(t *testing.T) {
	original := SavedContent{
		ID:              "c-1",
		SourceURL:       mustURL(t, "https://example.com"),
		Summary:         strPtr("s"),
		Metadata:        map[string]string{"k": "v"},
		EmbeddingVector: []float32{1, 2},
	}

	clone := original.Clone()
	clone.Metadata["k"] = "changed"
	clone.EmbeddingVector[0] = 9
	*clone.Summary = "changed"
	clone.SourceURL.Host = "other.com"

	assert.Equal(t, "v", original.Metadata["k"])
	assert.Equal(t, float32(1), original.EmbeddingVector[0])
	assert.Equal(t, "s", *original.Summary)
	assert.Equal(t, "example.com", original.SourceURL.Host)
}

func TestCloneAll_Nil(t *testing.T) {
	assert.Nil(t, CloneAll(nil))
	assert.Len(t, CloneAll([]SavedContent{{ID: "a"}}), 1)
}
