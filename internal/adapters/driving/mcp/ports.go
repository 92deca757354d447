package mcp

import (
	"github.com/custodia-labs/stash/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library manages saved content.
	Library driving.LibraryService

	// Browse narrows the library by filter and query.
	Browse driving.BrowseService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Browse == nil {
		return ErrMissingBrowseService
	}
	return nil
}
