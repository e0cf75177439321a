package sync

import (
	"context"
	"errors"
	"net/http"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/goals"
)

type fakeRefresher struct {
	mu    gosync.Mutex
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// awaitResult runs cmd with a deadline.
func awaitResult(t *testing.T, p *Poller) RefreshResultMsg {
	t.Helper()
	out := make(chan any, 1)
	go func() { out <- p.WaitForNextResult()() }()
	select {
	case msg := <-out:
		result, ok := msg.(RefreshResultMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return result
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh result")
		return RefreshResultMsg{}
	}
}

func TestRefreshNowWithoutTicker(t *testing.T) {
	target := &fakeRefresher{}
	p := New(target, 0)
	require.NotNil(t, p.Start())
	defer p.Stop()

	p.RefreshNow()
	result := awaitResult(t, p)
	assert.NoError(t, result.Error)
	assert.Equal(t, 1, target.count())
	assert.Equal(t, SyncIdle, p.Status().State)
	assert.False(t, p.Status().LastSync.IsZero())
}

func TestTickerRefreshes(t *testing.T) {
	target := &fakeRefresher{}
	p := New(target, 10*time.Millisecond)
	p.Start()
	defer p.Stop()

	awaitResult(t, p)
	awaitResult(t, p)
	assert.GreaterOrEqual(t, target.count(), 2)
}

func TestUnauthorizedIsFlagged(t *testing.T) {
	target := &fakeRefresher{err: &api.RequestError{
		Method: http.MethodGet, Path: "/goals/", Status: http.StatusUnauthorized,
	}}
	p := New(target, 0)
	p.Start()
	defer p.Stop()

	p.RefreshNow()
	result := awaitResult(t, p)
	require.Error(t, result.Error)
	assert.True(t, result.Unauthorized)
	assert.Equal(t, SyncError, p.Status().State)
}

func TestStaleResultsAreDropped(t *testing.T) {
	target := &fakeRefresher{err: goals.ErrStale}
	p := New(target, 0)
	p.Start()
	defer p.Stop()

	p.RefreshNow()
	require.Eventually(t, func() bool { return target.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return len(p.resultCh) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestStopIsIdempotentAndEndsWaiters(t *testing.T) {
	p := New(&fakeRefresher{err: errors.New("boom")}, 0)
	p.Start()

	wait := p.WaitForNextResult()
	p.Stop()
	p.Stop()

	assert.Nil(t, wait())
	assert.Nil(t, p.Start(), "stopped poller cannot restart")
}
