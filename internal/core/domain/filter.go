package domain

import "slices"

// Filter is a category grouping shown to the user.
// Each grouping covers one or more categories.
type Filter string

// Available filters.
const (
	FilterAll      Filter = "all"
	FilterVideo    Filter = "video"
	FilterPlaces   Filter = "places"
	FilterShopping Filter = "shopping"
	FilterArticle  Filter = "article"
	FilterSocial   Filter = "social"
)

// AllFilters lists the filters in display order.
func AllFilters() []Filter {
	return []Filter{FilterAll, FilterVideo, FilterPlaces, FilterShopping, FilterArticle, FilterSocial}
}

// ParseFilter converts a string to a Filter. Empty input means FilterAll.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	f := Filter(s)
	if !f.IsValid() {
		return "", ErrInvalidInput
	}
	return f, nil
}

// IsValid returns true if the filter is recognised.
func (f Filter) IsValid() bool {
	return slices.Contains(AllFilters(), f)
}

// Categories returns the categories covered by the filter.
// FilterAll returns nil, meaning no restriction.
func (f Filter) Categories() []ContentCategory {
	switch f {
	case FilterVideo:
		return []ContentCategory{CategoryVideo}
	case FilterPlaces:
		return []ContentCategory{CategoryMapPlaceA, CategoryMapPlaceB}
	case FilterShopping:
		return []ContentCategory{CategoryShoppingListing}
	case FilterArticle:
		return []ContentCategory{CategoryWeb}
	case FilterSocial:
		return []ContentCategory{CategorySocialPost}
	default:
		return nil
	}
}

// Includes reports whether content of the given category passes the filter.
func (f Filter) Includes(c ContentCategory) bool {
	if f == FilterAll {
		return true
	}
	return slices.Contains(f.Categories(), c)
}

// Apply returns the contents passing the filter, preserving order.
func (f Filter) Apply(contents []SavedContent) []SavedContent {
	out := make([]SavedContent, 0, len(contents))
	for i := range contents {
		if f.Includes(contents[i].Category) {
			out = append(out, contents[i])
		}
	}
	return out
}

// String returns the string representation.
func (f Filter) String() string {
	return string(f)
}
