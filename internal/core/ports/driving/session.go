package driving

import "github.com/custodia-labs/stash/internal/core/domain"

// SessionStatus is the top-level state of a library session.
type SessionStatus string

// Session states.
const (
	SessionIdle       SessionStatus = "idle"
	SessionLoading    SessionStatus = "loading"
	SessionReady      SessionStatus = "ready"
	SessionLoadFailed SessionStatus = "loadFailed"
)

// Session is the single owner of the in-memory library state.
//
// Event methods never block on I/O: they queue the event and return.
// External work runs in the background and reports back as further events.
type Session interface {
	// Appear loads the library. Ignored while a load is in flight.
	Appear()

	// Refresh reloads the library, e.g. after an external write.
	Refresh()

	// SelectFilter changes the category filter.
	SelectFilter(filter domain.Filter)

	// ChangeQuery changes the free-text query. Blank clears the search.
	ChangeQuery(query string)

	// Delete removes items from the store and the loaded set.
	Delete(ids ...string)

	// Snapshot returns the current derived state.
	Snapshot() SessionSnapshot

	// Subscribe returns a channel receiving the latest snapshot after every
	// state change, and a function that cancels the subscription.
	Subscribe() (<-chan SessionSnapshot, func())

	// Close stops the session and waits for background work to stop.
	Close() error
}

// SessionSnapshot is a read-only view of the session state.
// Every field is derived from the session's single authoritative state.
type SessionSnapshot struct {
	// Version increases with every state change.
	Version uint64

	Status SessionStatus

	// Enriching is true while a metadata enrichment batch is running.
	Enriching bool

	// Searching is true while a search for Query is in flight.
	Searching bool

	Filter domain.Filter
	Query  string

	// Visible is the filtered (and, with a query, searched) content.
	Visible []domain.SavedContent

	// Loaded is the number of items in the full loaded set.
	Loaded int

	// LoadErr is the last load failure while Status is SessionLoadFailed.
	LoadErr error

	// LastDelete is the outcome of the most recent Delete.
	LastDelete *domain.BulkDeleteResult
}

// Loading reports whether the load spinner should show.
func (s SessionSnapshot) Loading() bool {
	return s.Status == SessionLoading
}
