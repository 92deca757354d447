// Package sqlite provides the SQLite-backed library database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single Store hands out:
//
//   - ContentStore: saved content persistence in the mapper.Record layout
//   - SearchEngine: FTS5 keyword search ranked by bm25
//   - VectorIndex: cosine similarity over stored embedding vectors
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// The FTS5 index is an external-content table kept in step by triggers, so
// rows inserted by the quick-save writer are searchable without extra work.
//
// # Data Location
//
// By default, the database is stored at ~/.stash/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
