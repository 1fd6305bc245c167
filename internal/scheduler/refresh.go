// Package scheduler periodically re-fetches the book collection for
// the logged-in user. The mobile original refreshed on every screen
// focus; long-running invocations of this client get the same
// freshness from a cron-driven refresh instead.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CollectionRefresher re-fetches the authoritative book collection.
type CollectionRefresher interface {
	FetchCollection(ctx context.Context, userID string) ([]entities.Book, error)
}

// SessionFunc resolves the currently logged-in user, or nil when the
// client is anonymous.
type SessionFunc func() (*entities.User, error)

// RefreshScheduler manages periodic collection refreshes.
type RefreshScheduler struct {
	books   CollectionRefresher
	session SessionFunc
	cfg     config.Refresh

	cron         *cron.Cron
	entryID      cron.EntryID
	mu           sync.RWMutex
	isRunning    bool
	isRefreshing bool
	cancelFunc   context.CancelFunc
}

// NewRefreshScheduler creates a new scheduler instance.
func NewRefreshScheduler(books CollectionRefresher, session SessionFunc, cfg config.Refresh) *RefreshScheduler {
	return &RefreshScheduler{
		books:   books,
		session: session,
		cfg:     cfg,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the refresh is enabled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Collection refresh scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Collection refresh scheduler: started with schedule '%s'", s.cfg.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler and waits for a running refresh
// to complete.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Collection refresh scheduler: stopped")
}

// RunNow triggers an immediate refresh.
func (s *RefreshScheduler) RunNow() {
	go s.runRefresh()
}

// IsRunning returns whether the scheduler is active.
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next refresh will occur.
func (s *RefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runRefresh performs a single refresh for the logged-in user.
func (s *RefreshScheduler) runRefresh() {
	s.mu.Lock()
	if s.isRefreshing {
		s.mu.Unlock()
		log.Printf("Collection refresh: skipped (already refreshing)")
		return
	}
	s.isRefreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRefreshing = false
		s.mu.Unlock()
	}()

	user, err := s.session()
	if err != nil {
		log.Printf("Collection refresh: failed to read session: %v", err)
		return
	}
	if user == nil {
		log.Printf("Collection refresh: skipped (not logged in)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	fetched, err := s.books.FetchCollection(ctx, user.ID)
	if err != nil {
		log.Printf("Collection refresh: failed: %v", err)
		return
	}
	log.Printf("Collection refresh: %d books in %v", len(fetched), time.Since(start).Round(time.Millisecond))
}
