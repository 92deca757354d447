package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageFailure indicates the persistence layer failed.
	// Adapters wrap the underlying I/O error with it.
	ErrStorageFailure = errors.New("storage failure")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMetadataUnavailable indicates the page metadata could not be fetched.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the search engine is not configured.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrSessionClosed indicates an event was sent to a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// BulkDeleteResult reports the outcome of deleting several items one by one.
type BulkDeleteResult struct {
	// Deleted holds the ids removed, in attempt order.
	Deleted []string

	// Failed maps each id that could not be removed to its error.
	Failed map[string]error
}

// OK reports whether every item was deleted.
func (r *BulkDeleteResult) OK() bool {
	return len(r.Failed) == 0
}

// Err returns a *BulkDeleteError when any item failed, nil otherwise.
func (r *BulkDeleteResult) Err() error {
	if r.OK() {
		return nil
	}
	return &BulkDeleteError{Failed: r.Failed}
}

// BulkDeleteError is returned when one or more deletions in a bulk
// operation failed. The remaining items were still attempted.
type BulkDeleteError struct {
	Failed map[string]error
}

// IDs returns the failed ids in sorted order.
func (e *BulkDeleteError) IDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *BulkDeleteError) Error() string {
	ids := e.IDs()
	return fmt.Sprintf("delete failed for %d item(s): %s", len(ids), strings.Join(ids, ", "))
}

// Unwrap exposes the per-item causes to errors.Is and errors.As.
func (e *BulkDeleteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.IDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}
