package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Refresher is anything that can reload the library.
type Refresher interface {
	Refresh()
}

// Scheduler periodically refreshes a session so that items whose
// enrichment failed are retried without user action.
type Scheduler struct {
	interval time.Duration
	target   Refresher

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler. A non-positive interval disables it.
func NewScheduler(interval time.Duration, target Refresher) *Scheduler {
	return &Scheduler{
		interval: interval,
		target:   target,
	}
}

// Start runs the refresh loop. It blocks until Stop is called or the
// context is cancelled. A disabled scheduler returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		logger.Debug("Refresh scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Debug("Refresh scheduler started, interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			logger.Debug("Scheduled refresh")
			s.target.Refresh()
		}
	}
}

// Stop ends the loop and waits for Start to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	return nil
}
