package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   []string
	err     error
	fetched chan struct{}
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{fetched: make(chan struct{}, 8)}
}

func (f *fakeRefresher) FetchCollection(_ context.Context, userID string) ([]entities.Book, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
	select {
	case f.fetched <- struct{}{}:
	default:
	}
	if f.err != nil {
		return nil, f.err
	}
	return []entities.Book{{ID: "b1", UserID: userID, Title: "Dune"}}, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func loggedIn(userID string) SessionFunc {
	return func() (*entities.User, error) {
		return &entities.User{ID: userID}, nil
	}
}

func anonymous() (*entities.User, error) { return nil, nil }

func waitFetched(t *testing.T, f *fakeRefresher) {
	t.Helper()
	select {
	case <-f.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run")
	}
}

func TestRefreshScheduler_DisabledDoesNotStart(t *testing.T) {
	s := NewRefreshScheduler(newFakeRefresher(), loggedIn("u1"), config.Refresh{Enabled: false})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestRefreshScheduler_StartAndStop(t *testing.T) {
	s := NewRefreshScheduler(newFakeRefresher(), loggedIn("u1"), config.Refresh{
		Enabled:  true,
		Schedule: "*/5 * * * *",
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRunTime())
	assert.True(t, s.NextRunTime().After(time.Now()))

	// Start is idempotent while running.
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())

	// So is Stop once stopped.
	s.Stop()
}

func TestRefreshScheduler_InvalidSchedule(t *testing.T) {
	s := NewRefreshScheduler(newFakeRefresher(), loggedIn("u1"), config.Refresh{
		Enabled:  true,
		Schedule: "not a schedule",
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestRefreshScheduler_ContextCancelStops(t *testing.T) {
	s := NewRefreshScheduler(newFakeRefresher(), loggedIn("u1"), config.Refresh{
		Enabled:  true,
		Schedule: "*/5 * * * *",
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshScheduler_RunNow(t *testing.T) {
	refresher := newFakeRefresher()
	s := NewRefreshScheduler(refresher, loggedIn("u1"), config.Refresh{})

	s.RunNow()
	waitFetched(t, refresher)

	refresher.mu.Lock()
	defer refresher.mu.Unlock()
	assert.Equal(t, []string{"u1"}, refresher.calls)
}

func TestRefreshScheduler_SkipsWhenAnonymous(t *testing.T) {
	refresher := newFakeRefresher()
	s := NewRefreshScheduler(refresher, anonymous, config.Refresh{})

	s.RunNow()

	// Give the goroutine a chance to run; no fetch should happen.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, refresher.callCount())
}

func TestRefreshScheduler_FetchErrorDoesNotWedge(t *testing.T) {
	refresher := newFakeRefresher()
	refresher.err = errors.New("remote unavailable")
	s := NewRefreshScheduler(refresher, loggedIn("u1"), config.Refresh{})

	s.RunNow()
	waitFetched(t, refresher)

	// A failed refresh releases the in-flight guard.
	assert.Eventually(t, func() bool {
		s.RunNow()
		return refresher.callCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
