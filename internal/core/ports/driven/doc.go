// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentStore: Saved content persistence
//   - MetadataFetcher: Page metadata for enrichment
//   - SearchEngine: Keyword search over saved content
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, semantic
//     search and the embedding step are disabled.
//   - VectorIndex: Similarity search over stored embeddings.
//   - EmbeddingValidator: Connectivity check for the embedding settings.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
