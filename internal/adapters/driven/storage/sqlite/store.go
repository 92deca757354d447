package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/stash/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/mapper"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// DatabaseFile is the name of the library database inside the data directory.
const DatabaseFile = "library.db"

// Store is a SQLite-backed library database. It hands out the content
// store, keyword search engine and vector index over one connection pool.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDataDir returns ~/.stash/data.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".stash", "data"), nil
}

// NewStore opens or creates the library database in dataDir.
// If dataDir is empty, defaults to ~/.stash/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the quick-save writer append while the library is open.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ContentStore returns a ContentStore backed by this store.
func (s *Store) ContentStore() driven.ContentStore {
	return &contentStore{store: s}
}

// SearchEngine returns an FTS5 keyword SearchEngine backed by this store.
func (s *Store) SearchEngine() driven.SearchEngine {
	return &searchEngine{store: s}
}

// VectorIndex returns a VectorIndex over stored embeddings.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration runs one migration and records its version atomically.
func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// storageErr wraps an I/O error so callers can match domain.ErrStorageFailure.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageFailure, err)
}

// ==================== Content Store ====================

// contentStore implements driven.ContentStore.
type contentStore struct {
	store *Store
}

var _ driven.ContentStore = (*contentStore)(nil)

const contentColumns = `id, title, url, category, created_at, thumbnail, summary, metadata, embedding`

// Save stores or replaces content by ID.
func (s *contentStore) Save(ctx context.Context, content *domain.SavedContent) error {
	r := mapper.ToRecord(content)
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO contents (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			category = excluded.category,
			created_at = excluded.created_at,
			thumbnail = excluded.thumbnail,
			summary = excluded.summary,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`, r.ID, r.Title, r.URLString, r.CategoryCode, encodeTime(r.CreatedAt),
		r.ThumbnailURLString, r.Summary, r.MetadataJSON, nullBytes(r.EmbeddingBytes))
	if err != nil {
		return storageErr("saving content", err)
	}
	return nil
}

// FetchAll returns every stored record, newest first.
func (s *contentStore) FetchAll(ctx context.Context) ([]domain.SavedContent, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM contents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, storageErr("querying contents", err)
	}
	defer rows.Close()

	contents := make([]domain.SavedContent, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, storageErr("scanning content", err)
		}
		contents = append(contents, mapper.ToDomain(r))
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating contents", err)
	}
	return contents, nil
}

// Update overwrites an existing record.
func (s *contentStore) Update(ctx context.Context, content *domain.SavedContent) error {
	r := mapper.ToRecord(content)
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE contents SET
			title = ?, url = ?, category = ?, created_at = ?,
			thumbnail = ?, summary = ?, metadata = ?, embedding = ?
		WHERE id = ?
	`, r.Title, r.URLString, r.CategoryCode, encodeTime(r.CreatedAt),
		r.ThumbnailURLString, r.Summary, r.MetadataJSON, nullBytes(r.EmbeddingBytes), r.ID)
	if err != nil {
		return storageErr("updating content", err)
	}
	return requireRow(result, "updating content")
}

// Delete removes a record.
func (s *contentStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM contents WHERE id = ?", id)
	if err != nil {
		return storageErr("deleting content", err)
	}
	return requireRow(result, "deleting content")
}

// requireRow maps zero affected rows to domain.ErrNotFound.
func requireRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (mapper.Record, error) {
	var (
		r                            mapper.Record
		createdAt                    int64
		thumbnail, summary, metadata sql.NullString
		embedding                    []byte
	)
	if err := row.Scan(&r.ID, &r.Title, &r.URLString, &r.CategoryCode, &createdAt,
		&thumbnail, &summary, &metadata, &embedding); err != nil {
		return mapper.Record{}, err
	}

	r.CreatedAt = decodeTime(createdAt)
	r.ThumbnailURLString = nullStringPtr(thumbnail)
	r.Summary = nullStringPtr(summary)
	r.MetadataJSON = nullStringPtr(metadata)
	if len(embedding) > 0 {
		r.EmbeddingBytes = embedding
	}
	return r, nil
}

// ==================== Helper Functions ====================

func encodeTime(t time.Time) int64 {
	return t.UnixNano()
}

func decodeTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// nullBytes stores an empty blob as NULL.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
