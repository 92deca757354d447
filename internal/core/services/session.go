package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/stash/internal/core/classifier"
	"github.com/custodia-labs/stash/internal/core/domain"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.Session = (*Session)(nil)

// eventQueueSize bounds how many events can wait for the loop.
const eventQueueSize = 64

// Events processed by the session loop. User events come from the public
// methods; the rest are results reported back by background tasks.
type (
	appearEvent  struct{}
	refreshEvent struct{}
	filterEvent  struct{ filter domain.Filter }
	queryEvent   struct{ query string }
	deleteEvent  struct{ ids []string }

	loadedEvent struct {
		contents []domain.SavedContent
		err      error
	}
	enrichedEvent   struct{ content domain.SavedContent }
	enrichDoneEvent struct {
		ids    []string
		report driving.EnrichReport
	}
	searchDoneEvent struct {
		token   uint64
		results []domain.SavedContent
		err     error
	}
	deletedEvent struct{ result domain.BulkDeleteResult }
)

// Session owns the in-memory library state. All state changes happen on a
// single goroutine that processes events in order; background work (load,
// enrichment, search, delete) runs in its own goroutines and reports back
// through the same queue.
type Session struct {
	store    driven.ContentStore
	search   driving.SearchService
	enricher *Enricher

	ctx       context.Context
	cancel    context.CancelFunc
	events    chan any
	wg        sync.WaitGroup
	closeOnce sync.Once

	// Owned by the loop goroutine.
	status        driving.SessionStatus
	loaded        []domain.SavedContent
	loadErr       error
	reloadPending bool
	composer      *Composer
	cancelSearch  context.CancelFunc
	batches       int
	inFlight      map[string]bool
	merged        map[string]domain.SavedContent
	lastDelete    *domain.BulkDeleteResult
	version       uint64

	mu      sync.RWMutex
	snap    driving.SessionSnapshot
	subs    map[int]chan driving.SessionSnapshot
	nextSub int
}

// NewSession creates a session and starts its event loop.
// search and enricher are optional; without them queries yield no results
// and loaded content is never enriched.
func NewSession(
	store driven.ContentStore,
	search driving.SearchService,
	enricher *Enricher,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		store:    store,
		search:   search,
		enricher: enricher,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan any, eventQueueSize),
		status:   driving.SessionIdle,
		composer: NewComposer(),
		inFlight: make(map[string]bool),
		merged:   make(map[string]domain.SavedContent),
		subs:     make(map[int]chan driving.SessionSnapshot),
	}
	s.publish()

	s.wg.Add(1)
	go s.loop()
	return s
}

// Appear loads the library unless a load is already running.
func (s *Session) Appear() { s.send(appearEvent{}) }

// Refresh reloads the library. If a load is running, another one follows it.
func (s *Session) Refresh() { s.send(refreshEvent{}) }

// SelectFilter changes the category filter.
func (s *Session) SelectFilter(filter domain.Filter) { s.send(filterEvent{filter: filter}) }

// ChangeQuery changes the free-text query.
func (s *Session) ChangeQuery(query string) { s.send(queryEvent{query: query}) }

// Delete removes items one by one, continuing past failures.
func (s *Session) Delete(ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.send(deleteEvent{ids: append([]string(nil), ids...)})
}

// Snapshot returns the current derived state.
func (s *Session) Snapshot() driving.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe returns a channel that always holds the latest snapshot.
// Slow readers skip intermediate snapshots rather than block the session.
func (s *Session) Subscribe() (<-chan driving.SessionSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan driving.SessionSnapshot, 1)
	ch <- s.snap
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close stops the loop, cancels background work and waits for it.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()

		s.mu.Lock()
		defer s.mu.Unlock()
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
	})
	return nil
}

// send queues an event. Events sent after Close are dropped.
func (s *Session) send(ev any) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// spawn runs fn as tracked background work.
func (s *Session) spawn(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

func (s *Session) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			if s.cancelSearch != nil {
				s.cancelSearch()
			}
			return
		case ev := <-s.events:
			if s.handle(ev) {
				s.publish()
			}
		}
	}
}

// handle applies one event and reports whether the state changed.
func (s *Session) handle(ev any) bool {
	switch ev := ev.(type) {
	case appearEvent:
		if s.status == driving.SessionLoading {
			return false
		}
		s.startLoad()

	case refreshEvent:
		if s.status == driving.SessionLoading {
			s.reloadPending = true
			return false
		}
		s.startLoad()

	case loadedEvent:
		s.finishLoad(ev.contents, ev.err)

	case enrichedEvent:
		s.merged[ev.content.ID] = ev.content
		return s.applyEnrichment(ev.content)

	case enrichDoneEvent:
		s.batches--
		for _, id := range ev.ids {
			delete(s.inFlight, id)
			delete(s.merged, id)
		}
		logger.Debug("Enrichment batch complete: %d/%d enriched", ev.report.Enriched, ev.report.Attempted)

	case filterEvent:
		s.composer.SetFilter(ev.filter)

	case queryEvent:
		s.startSearch(ev.query)

	case searchDoneEvent:
		if ev.err != nil {
			logger.Warn("Search failed: %v", ev.err)
		}
		return s.composer.Accept(ev.token, ev.results, ev.err)

	case deleteEvent:
		ids := ev.ids
		s.spawn(func(ctx context.Context) {
			s.send(deletedEvent{result: deleteEach(ctx, s.store, ids)})
		})
		return false

	case deletedEvent:
		s.finishDelete(ev.result)

	default:
		return false
	}
	return true
}

func (s *Session) startLoad() {
	s.status = driving.SessionLoading
	s.loadErr = nil
	s.reloadPending = false

	s.spawn(func(ctx context.Context) {
		contents, err := s.store.FetchAll(ctx)
		s.send(loadedEvent{contents: contents, err: err})
	})
}

func (s *Session) finishLoad(contents []domain.SavedContent, err error) {
	if err != nil {
		logger.Warn("Library load failed: %v", err)
		s.status = driving.SessionLoadFailed
		s.loadErr = err
	} else {
		logger.Debug("Library loaded: %d item(s)", len(contents))
		warnCategoryDrift(contents)
		s.status = driving.SessionReady
		s.loaded = contents
		// A load that read the store before a write-back landed must not
		// undo merges from batches still running.
		for _, merged := range s.merged {
			s.applyEnrichment(merged)
		}
		s.startEnrichment()
	}

	if s.reloadPending {
		s.startLoad()
	}
}

// warnCategoryDrift logs items whose stored category no longer matches
// their URL. Categories are frozen at save time, so drift means the rules
// changed under existing records.
func warnCategoryDrift(contents []domain.SavedContent) {
	for i := range contents {
		if !classifier.Verify(&contents[i]) {
			logger.Warn("Category drift for %s: stored %s, rules now say %s",
				contents[i].ID, contents[i].Category, classifier.Classify(contents[i].SourceURL))
		}
	}
}

// startEnrichment enriches loaded items that need it and are not already
// being enriched. Nothing happens, and the enriching flag stays off, when
// there is nothing to do.
func (s *Session) startEnrichment() {
	if s.enricher == nil {
		return
	}

	var items []domain.SavedContent
	for _, c := range Pending(s.loaded) {
		if !s.inFlight[c.ID] {
			items = append(items, c.Clone())
		}
	}
	if len(items) == 0 {
		return
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
		s.inFlight[items[i].ID] = true
	}
	s.batches++

	s.spawn(func(ctx context.Context) {
		report := s.enricher.Run(ctx, items, func(o EnrichOutcome) {
			if o.Err == nil {
				s.send(enrichedEvent{content: o.Content})
			}
		})
		s.send(enrichDoneEvent{ids: ids, report: report})
	})
}

// applyEnrichment copies the enrichment fields of merged onto the loaded
// item with the same id. Frozen fields are never touched.
func (s *Session) applyEnrichment(merged domain.SavedContent) bool {
	for i := range s.loaded {
		if s.loaded[i].ID != merged.ID {
			continue
		}
		c := &s.loaded[i]
		c.Title = merged.Title
		c.Summary = merged.Summary
		c.ThumbnailURL = merged.ThumbnailURL
		c.Metadata = merged.Metadata
		return true
	}
	return false
}

func (s *Session) startSearch(query string) {
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}

	req, ok := s.composer.SetQuery(query)
	if !ok {
		return
	}

	searchCtx, cancel := context.WithCancel(s.ctx)
	s.cancelSearch = cancel

	s.spawn(func(context.Context) {
		defer cancel()
		var (
			results []domain.SavedContent
			err     error
		)
		if s.search == nil {
			err = domain.ErrSearchUnavailable
		} else {
			results, err = s.search.Search(searchCtx, req.Query)
		}
		s.send(searchDoneEvent{token: req.Token, results: results, err: err})
	})
}

func (s *Session) finishDelete(result domain.BulkDeleteResult) {
	s.lastDelete = &result
	if len(result.Deleted) == 0 {
		return
	}

	deleted := make(map[string]bool, len(result.Deleted))
	for _, id := range result.Deleted {
		deleted[id] = true
	}
	kept := s.loaded[:0:0]
	for i := range s.loaded {
		if !deleted[s.loaded[i].ID] {
			kept = append(kept, s.loaded[i])
		}
	}
	s.loaded = kept
	s.composer.Forget(result.Deleted)
}

// publish rebuilds the snapshot and hands it to subscribers.
func (s *Session) publish() {
	s.version++
	snap := driving.SessionSnapshot{
		Version:    s.version,
		Status:     s.status,
		Enriching:  s.batches > 0,
		Searching:  s.composer.Searching(),
		Filter:     s.composer.Filter(),
		Query:      s.composer.Query(),
		Visible:    domain.CloneAll(s.composer.Visible(s.loaded)),
		Loaded:     len(s.loaded),
		LoadErr:    s.loadErr,
		LastDelete: s.lastDelete,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
