package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(contents []SavedContent) []string {
	out := make([]string, len(contents))
	for i := range contents {
		out[i] = contents[i].ID
	}
	return out
}

func TestFilter_Apply_Places(t *testing.T) {
	loaded := []SavedContent{
		{ID: "A", Category: CategoryWeb},
		{ID: "B", Category: CategoryVideo},
		{ID: "C", Category: CategoryMapPlaceA},
		{ID: "D", Category: CategoryMapPlaceB},
		{ID: "E", Category: CategoryShoppingListing},
	}

	assert.Equal(t, []string{"C", "D"}, ids(FilterPlaces.Apply(loaded)))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, ids(FilterAll.Apply(loaded)))
	assert.Equal(t, []string{"A"}, ids(FilterArticle.Apply(loaded)))
	assert.Equal(t, []string{"E"}, ids(FilterShopping.Apply(loaded)))
	assert.Empty(t, FilterSocial.Apply(loaded))
}

func TestFilter_Includes(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, FilterAll.Includes(c))
	}
	assert.True(t, FilterVideo.Includes(CategoryVideo))
	assert.False(t, FilterVideo.Includes(CategoryWeb))
	assert.True(t, FilterSocial.Includes(CategorySocialPost))
}

func TestFilter_CoversEveryCategory(t *testing.T) {
	covered := map[ContentCategory]bool{}
	for _, f := range AllFilters() {
		for _, c := range f.Categories() {
			covered[c] = true
		}
	}
	for _, c := range AllCategories() {
		assert.True(t, covered[c], "category %s has no filter", c)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("places")
	require.NoError(t, err)
	assert.Equal(t, FilterPlaces, f)

	_, err = ParseFilter("music")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
