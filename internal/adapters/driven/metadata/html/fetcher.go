// Package html provides a MetadataFetcher that reads OpenGraph and standard
// HTML meta tags from a page.
package html

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.MetadataFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout      = 15 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; stash/1.0; +link-preview)"
	DefaultMaxBodyBytes = 2 << 20
)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds each request including redirects (default: 15s).
	Timeout time.Duration

	// UserAgent is sent with every request. Some sites serve bare pages to
	// unknown agents.
	UserAgent string

	// MaxBodyBytes caps how much of the page is parsed (default: 2 MiB).
	// Meta tags live in the head, so truncation rarely loses anything.
	MaxBodyBytes int64
}

// Fetcher fetches a page with a plain HTTP GET and extracts its metadata.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewFetcher creates a metadata fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Fetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Fetch loads u and extracts its metadata. Any failure to obtain an HTML
// page is reported as domain.ErrMetadataUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*domain.ContentMetadata, error) {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: unsupported url %v", domain.ErrMetadataUnavailable, u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", domain.ErrMetadataUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching page: %w", domain.ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrMetadataUnavailable, resp.StatusCode)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: not an html page: %s",
			domain.ErrMetadataUnavailable, resp.Header.Get("Content-Type"))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing html: %w", domain.ErrMetadataUnavailable, err)
	}

	// Relative image URLs resolve against the final URL after redirects.
	base := u
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	meta := Extract(doc, base)
	logger.Debug("Fetched metadata for %s: title=%q", u, meta.Title)
	return meta, nil
}

// Extract reads metadata from a parsed page. base resolves relative image
// URLs and supplies the title of last resort.
func Extract(doc *goquery.Document, base *url.URL) *domain.ContentMetadata {
	meta := &domain.ContentMetadata{
		Title: firstNonEmpty(
			metaContent(doc, "property", "og:title"),
			metaContent(doc, "name", "twitter:title"),
			strings.TrimSpace(doc.Find("title").First().Text()),
			metaContent(doc, "property", "og:site_name"),
			base.Hostname(),
		),
		Description: firstNonEmpty(
			metaContent(doc, "property", "og:description"),
			metaContent(doc, "name", "description"),
			metaContent(doc, "name", "twitter:description"),
		),
	}

	image := firstNonEmpty(
		metaContent(doc, "property", "og:image"),
		metaContent(doc, "property", "og:image:url"),
		metaContent(doc, "name", "twitter:image"),
	)
	if image != "" {
		if ref, err := url.Parse(image); err == nil {
			resolved := base.ResolveReference(ref)
			if resolved.Scheme == "http" || resolved.Scheme == "https" {
				meta.ImageURL = resolved
			}
		}
	}

	if site := metaContent(doc, "property", "og:site_name"); site != "" {
		meta.SiteName = &site
	}

	return meta
}

// metaContent returns the trimmed content of the first meta tag whose attr
// equals value.
func metaContent(doc *goquery.Document, attr, value string) string {
	selector := fmt.Sprintf("meta[%s=%q]", attr, value)
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// isHTML reports whether a Content-Type header names an HTML document.
// A missing header is accepted.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
