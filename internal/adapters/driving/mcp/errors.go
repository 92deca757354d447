// Package mcp provides an MCP (Model Context Protocol) server adapter for Stash.
// It lets AI assistants list, save and delete saved content in the library.
package mcp

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("mcp: library service is required")

// ErrMissingBrowseService is returned when the browse service is not provided.
var ErrMissingBrowseService = errors.New("mcp: browse service is required")
