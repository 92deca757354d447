package domain

import (
	"maps"
	"net/url"
	"slices"
	"time"
)

// ContentCategory is the closed classification label assigned to a saved URL.
// It is determined once at save time and never recomputed.
type ContentCategory string

// Available content categories.
const (
	// CategoryWeb is generic web content and the fallback for unknown hosts.
	CategoryWeb ContentCategory = "web"

	// CategoryVideo is content from the video platform.
	CategoryVideo ContentCategory = "video"

	// CategorySocialPost is a post on the social-media platform.
	CategorySocialPost ContentCategory = "socialPost"

	// CategoryMapPlaceA is a place from the first map provider.
	CategoryMapPlaceA ContentCategory = "mapPlaceA"

	// CategoryMapPlaceB is a place from the second map provider.
	CategoryMapPlaceB ContentCategory = "mapPlaceB"

	// CategoryShoppingListing is a listing on the shopping platform.
	CategoryShoppingListing ContentCategory = "shoppingListing"
)

// AllCategories lists every category in classification precedence order.
func AllCategories() []ContentCategory {
	return []ContentCategory{
		CategoryWeb,
		CategoryVideo,
		CategorySocialPost,
		CategoryMapPlaceA,
		CategoryMapPlaceB,
		CategoryShoppingListing,
	}
}

// IsValid returns true if the category is one of the known codes.
func (c ContentCategory) IsValid() bool {
	return slices.Contains(AllCategories(), c)
}

// String returns the persisted category code.
func (c ContentCategory) String() string {
	return string(c)
}

// Description returns a human-readable description of the category.
func (c ContentCategory) Description() string {
	switch c {
	case CategoryWeb:
		return "Web page"
	case CategoryVideo:
		return "Video"
	case CategorySocialPost:
		return "Social post"
	case CategoryMapPlaceA, CategoryMapPlaceB:
		return "Place"
	case CategoryShoppingListing:
		return "Shopping listing"
	default:
		return unknownDescription
	}
}

// MetadataKeySiteName is the metadata key enrichment writes the site name to.
const MetadataKeySiteName = "siteName"

// SavedContent is a URL the user saved, plus whatever enrichment has added.
//
// ID, SourceURL, Category and CreatedAt are frozen at creation. Title,
// Summary, ThumbnailURL and Metadata are only changed by enrichment, and
// EmbeddingVector only by the embedding step.
type SavedContent struct {
	// ID is the opaque unique identifier assigned at creation.
	ID string

	// Title is the display string. Overwritten by enrichment.
	Title string

	// SourceURL is the original saved link.
	SourceURL *url.URL

	// Category is derived from SourceURL at creation.
	Category ContentCategory

	// CreatedAt is when the content was saved.
	CreatedAt time.Time

	// ThumbnailURL is set by enrichment when the page has an image.
	ThumbnailURL *url.URL

	// Summary is set by enrichment from the page description.
	Summary *string

	// Metadata holds string key-value pairs. Never nil after construction
	// through the mapper or the save path.
	Metadata map[string]string

	// EmbeddingVector is absent until the embedding step populates it.
	EmbeddingVector []float32
}

// NeedsEnrichment reports whether the content has not been enriched yet:
// metadata is empty and both thumbnail and summary are absent.
func (c *SavedContent) NeedsEnrichment() bool {
	return len(c.Metadata) == 0 && c.ThumbnailURL == nil && c.Summary == nil
}

// HasEmbedding reports whether an embedding vector is present.
func (c *SavedContent) HasEmbedding() bool {
	return len(c.EmbeddingVector) > 0
}

// URLString returns the absolute source URL, or "" when absent.
func (c *SavedContent) URLString() string {
	if c.SourceURL == nil {
		return ""
	}
	return c.SourceURL.String()
}

// Merge applies fetched metadata to the content. Title and summary are
// overwritten, the thumbnail is set when an image was found, and the site
// name is added to the metadata without touching other keys.
func (c *SavedContent) Merge(meta ContentMetadata) {
	c.Title = meta.Title
	summary := meta.Description
	c.Summary = &summary
	if meta.ImageURL != nil {
		thumb := *meta.ImageURL
		c.ThumbnailURL = &thumb
	}
	if meta.SiteName != nil {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string, 1)
		}
		c.Metadata[MetadataKeySiteName] = *meta.SiteName
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c SavedContent) Clone() SavedContent {
	out := c
	if c.SourceURL != nil {
		u := *c.SourceURL
		out.SourceURL = &u
	}
	if c.ThumbnailURL != nil {
		u := *c.ThumbnailURL
		out.ThumbnailURL = &u
	}
	if c.Summary != nil {
		s := *c.Summary
		out.Summary = &s
	}
	if c.Metadata != nil {
		out.Metadata = maps.Clone(c.Metadata)
	}
	if c.EmbeddingVector != nil {
		out.EmbeddingVector = slices.Clone(c.EmbeddingVector)
	}
	return out
}

// CloneAll deep-copies a slice of contents.
func CloneAll(contents []SavedContent) []SavedContent {
	if contents == nil {
		return nil
	}
	out := make([]SavedContent, len(contents))
	for i := range contents {
		out[i] = contents[i].Clone()
	}
	return out
}

// ContentMetadata is the ephemeral result of fetching a page.
// It is consumed by Merge and never persisted on its own.
type ContentMetadata struct {
	Title       string
	Description string
	ImageURL    *url.URL
	SiteName    *string
}
