// Package classifier maps saved URLs to content categories.
//
// Classification is pure and total: it performs no I/O and any URL without
// a usable host degrades to domain.CategoryWeb. It runs once, when content
// is saved; the stored category is never recomputed.
package classifier

import (
	"net/url"
	"strings"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// rule matches hosts belonging to one category.
type rule struct {
	category domain.ContentCategory

	// domains match exactly or as a suffix after a dot, so
	// "m.youtube.com" matches "youtube.com".
	domains []string

	// hosts match exactly. Short-link domains live here.
	hosts []string

	// sharedHosts match only when the path starts with the given prefix.
	// Used for shortener hosts that serve more than one platform.
	sharedHosts map[string]string
}

// rules are evaluated top to bottom and the first match wins.
// Host sets are disjoint, so order only matters for readability.
var rules = []rule{
	{
		category: domain.CategoryVideo,
		domains:  []string{"youtube.com"},
		hosts:    []string{"youtu.be"},
	},
	{
		category: domain.CategorySocialPost,
		domains:  []string{"instagram.com"},
	},
	{
		category: domain.CategoryMapPlaceA,
		domains:  []string{"map.naver.com"},
		hosts:    []string{"naver.me"},
	},
	{
		category:    domain.CategoryMapPlaceB,
		domains:     []string{"maps.google.com"},
		hosts:       []string{"maps.app.goo.gl"},
		sharedHosts: map[string]string{"goo.gl": "/maps"},
	},
	{
		category: domain.CategoryShoppingListing,
		domains:  []string{"coupang.com"},
		hosts:    []string{"coupa.ng"},
	},
}

// Classify returns the category for a URL. A nil URL or one without a host
// is generic web content.
func Classify(u *url.URL) domain.ContentCategory {
	if u == nil {
		return domain.CategoryWeb
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return domain.CategoryWeb
	}

	for i := range rules {
		if rules[i].matches(host, u.Path) {
			return rules[i].category
		}
	}
	return domain.CategoryWeb
}

// Verify reports whether the stored category still matches what the
// classifier produces for the content's URL today. Loads use it to flag
// drift; the stored category is never rewritten.
func Verify(content *domain.SavedContent) bool {
	return Classify(content.SourceURL) == content.Category
}

func (r *rule) matches(host, path string) bool {
	for _, d := range r.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	for _, h := range r.hosts {
		if host == h {
			return true
		}
	}
	if prefix, ok := r.sharedHosts[host]; ok && strings.HasPrefix(path, prefix) {
		return true
	}
	return false
}
