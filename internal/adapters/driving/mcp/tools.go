package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// ListContentsInput is the input schema for the list_contents tool.
type ListContentsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"category filter: all, video, places, shopping, article or social (default all)"`
	Query  string `json:"query,omitempty" jsonschema:"free-text query; results are in relevance order when set"`
}

// ListContentsOutput is the output schema for the list_contents tool.
type ListContentsOutput struct {
	Contents []ContentOutput `json:"contents"`
	Count    int             `json:"count"`
}

// SaveContentInput is the input schema for the save_content tool.
type SaveContentInput struct {
	URL string `json:"url" jsonschema:"the link to save"`
}

// DeleteContentInput is the input schema for the delete_content tool.
type DeleteContentInput struct {
	ID string `json:"id" jsonschema:"the id of the saved content to delete"`
}

// DeleteContentOutput is the output schema for the delete_content tool.
type DeleteContentOutput struct {
	Deleted string `json:"deleted"`
}

// ContentOutput is the wire form of one saved item.
type ContentOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Summary   string `json:"summary,omitempty"`
	SiteName  string `json:"site_name,omitempty"`
}

func toContentOutput(c *domain.SavedContent) ContentOutput {
	out := ContentOutput{
		ID:        c.ID,
		Title:     c.Title,
		URL:       c.URLString(),
		Category:  c.Category.String(),
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		SiteName:  c.Metadata[domain.MetadataKeySiteName],
	}
	if c.ThumbnailURL != nil {
		out.Thumbnail = c.ThumbnailURL.String()
	}
	if c.Summary != nil {
		out.Summary = *c.Summary
	}
	return out
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_contents",
		Description: "List saved content, optionally narrowed by category filter and free-text query",
	}, s.handleListContents)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_content",
		Description: "Save a link to the library; its category is detected from the URL",
	}, s.handleSaveContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_content",
		Description: "Delete one saved item by id",
	}, s.handleDeleteContent)
}

// handleListContents handles the list_contents tool invocation.
func (s *Server) handleListContents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListContentsInput,
) (*mcp.CallToolResult, ListContentsOutput, error) {
	filter, err := domain.ParseFilter(input.Filter)
	if err != nil {
		return nil, ListContentsOutput{}, fmt.Errorf("unknown filter %q: %w", input.Filter, err)
	}

	contents, err := s.ports.Browse.Browse(ctx, filter, input.Query)
	if err != nil {
		return nil, ListContentsOutput{}, fmt.Errorf("listing contents: %w", err)
	}

	output := ListContentsOutput{
		Contents: make([]ContentOutput, len(contents)),
		Count:    len(contents),
	}
	for i := range contents {
		output.Contents[i] = toContentOutput(&contents[i])
	}
	return nil, output, nil
}

// handleSaveContent handles the save_content tool invocation.
func (s *Server) handleSaveContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveContentInput,
) (*mcp.CallToolResult, ContentOutput, error) {
	content, err := s.ports.Library.SaveURL(ctx, input.URL)
	if err != nil {
		return nil, ContentOutput{}, fmt.Errorf("saving %q: %w", input.URL, err)
	}
	return nil, toContentOutput(content), nil
}

// handleDeleteContent handles the delete_content tool invocation.
func (s *Server) handleDeleteContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteContentInput,
) (*mcp.CallToolResult, DeleteContentOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, DeleteContentOutput{}, fmt.Errorf("id is required: %w", domain.ErrInvalidInput)
	}

	result := s.ports.Library.Delete(ctx, input.ID)
	if err := result.Err(); err != nil {
		return nil, DeleteContentOutput{}, err
	}
	return nil, DeleteContentOutput{Deleted: input.ID}, nil
}
