// Package domain defines the core business entities for Stash.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SavedContent: A saved URL with its category and enrichment
//   - ContentCategory: The closed set of content classifications
//   - ContentMetadata: Page metadata fetched during enrichment
//   - Filter: Category groupings used to narrow the library
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
