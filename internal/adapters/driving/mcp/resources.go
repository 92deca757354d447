package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/stash/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Stash resources.
	uriScheme = "stash://"

	jsonMIME = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the whole library.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "contents",
		Name:        "contents",
		Description: "All saved content, newest first",
		MIMEType:    jsonMIME,
	}, s.handleContentsResource)

	// Template for one category grouping.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "filters/{filter}",
		Name:        "filtered-contents",
		Description: "Saved content in one category grouping",
		MIMEType:    jsonMIME,
	}, s.handleFilterResource)

	// Template for a single item.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "contents/{contentId}",
		Name:        "content",
		Description: "A single saved item",
		MIMEType:    jsonMIME,
	}, s.handleContentResource)
}

// handleContentsResource returns the whole library.
func (s *Server) handleContentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	contents, err := s.ports.Browse.Browse(ctx, domain.FilterAll, "")
	if err != nil {
		return nil, fmt.Errorf("listing contents: %w", err)
	}
	return jsonResource(req.Params.URI, outputs(contents))
}

// handleFilterResource returns content passing one filter.
func (s *Server) handleFilterResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract filter from URI: stash://filters/{filter}
	name := extractFilter(req.Params.URI)
	filter := domain.Filter(name)
	if name == "" || !filter.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	contents, err := s.ports.Browse.Browse(ctx, filter, "")
	if err != nil {
		return nil, fmt.Errorf("listing contents: %w", err)
	}
	return jsonResource(req.Params.URI, outputs(contents))
}

// handleContentResource returns a single saved item.
func (s *Server) handleContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract contentId from URI: stash://contents/{contentId}
	id := extractContentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	contents, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing contents: %w", err)
	}
	for i := range contents {
		if contents[i].ID == id {
			return jsonResource(req.Params.URI, toContentOutput(&contents[i]))
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func outputs(contents []domain.SavedContent) []ContentOutput {
	out := make([]ContentOutput, len(contents))
	for i := range contents {
		out[i] = toContentOutput(&contents[i])
	}
	return out
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractFilter extracts the filter name from a URI like stash://filters/{filter}.
func extractFilter(uri string) string {
	const prefix = uriScheme + "filters/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}

// extractContentID extracts the content ID from a URI like stash://contents/{contentId}.
func extractContentID(uri string) string {
	const prefix = uriScheme + "contents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
