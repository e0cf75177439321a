package goals_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/goals"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/tests/testutil"
)

const email = "ann@x.com"

type staticToken string

func (s staticToken) Token() string { return string(s) }

type memRecorder struct {
	mu   sync.Mutex
	seen []model.Activity
	err  error
}

func (r *memRecorder) Record(_ context.Context, a model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, a)
	return r.err
}

func (r *memRecorder) kinds() []model.ActivityKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ActivityKind, 0, len(r.seen))
	for _, a := range r.seen {
		out = append(out, a.Kind)
	}
	return out
}

func setup(t *testing.T) (*testutil.FakeBackend, *goals.Collection, *memRecorder) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fb.AddUser("Ann", email, "pw123456")
	client := api.NewClient(fb.URL(), staticToken(fb.IssueToken(email)))
	rec := &memRecorder{}
	return fb, goals.NewCollection(client, goals.WithRecorder(rec)), rec
}

func titles(gs []model.Goal) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Title)
	}
	return out
}

func TestNewCollectionStartsLoading(t *testing.T) {
	_, c, _ := setup(t)
	assert.True(t, c.Loading())
	assert.Empty(t, c.Goals())
}

func TestRefreshReplacesCacheNewestFirst(t *testing.T) {
	fb, c, _ := setup(t)
	fb.SeedGoal(email, "Read", 30)
	fb.SeedGoal(email, "Run", 20, 25)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, goals.StateReady, c.State().Kind)
	assert.False(t, c.Loading())
	assert.Equal(t, []string{"Run", "Read"}, titles(c.Goals()))
	assert.Equal(t, 75, c.TotalMinutes())
}

func TestRefreshFailureKeepsPreviousGoals(t *testing.T) {
	fb, c, _ := setup(t)
	fb.SeedGoal(email, "Read")
	require.NoError(t, c.Refresh(context.Background()))

	fb.FailNext(http.MethodGet, "/goals/", http.StatusInternalServerError)
	err := c.Refresh(context.Background())
	require.Error(t, err)

	state := c.State()
	assert.Equal(t, goals.StateFailed, state.Kind)
	assert.Equal(t, http.StatusInternalServerError, api.StatusOf(state.Err))
	assert.False(t, c.Loading(), "loading is cleared on failure")
	assert.Equal(t, []string{"Read"}, titles(c.Goals()))
}

func TestCreatePrependsServerCopy(t *testing.T) {
	fb, c, rec := setup(t)
	fb.SeedGoal(email, "Read")
	require.NoError(t, c.Refresh(context.Background()))

	desc := "5k"
	g, err := c.Create(context.Background(), model.GoalCreate{Title: "Run", Description: &desc})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, 0, g.TotalMinutes)
	assert.Equal(t, []string{"Run", "Read"}, titles(c.Goals()))
	assert.Equal(t, []model.ActivityKind{model.ActivityGoalCreated}, rec.kinds())
}

func TestCreateFailureLeavesCache(t *testing.T) {
	fb, c, rec := setup(t)
	require.NoError(t, c.Refresh(context.Background()))

	fb.FailNext(http.MethodPost, "/goals/", http.StatusBadGateway)
	_, err := c.Create(context.Background(), model.GoalCreate{Title: "Run"})
	require.Error(t, err)
	assert.Empty(t, c.Goals())
	assert.Empty(t, rec.kinds())
}

func TestUpdateReplacesByID(t *testing.T) {
	fb, c, _ := setup(t)
	read := fb.SeedGoal(email, "Read", 10)
	fb.SeedGoal(email, "Run")
	require.NoError(t, c.Refresh(context.Background()))

	title := "Read more"
	_, err := c.Update(context.Background(), read.ID, model.GoalUpdate{Title: &title})
	require.NoError(t, err)

	got, ok := c.Find(read.ID)
	require.True(t, ok)
	assert.Equal(t, "Read more", got.Title)
	assert.Equal(t, 10, got.TotalMinutes)
	assert.Equal(t, []string{"Run", "Read more"}, titles(c.Goals()), "order is preserved")
}

func TestRemoveDropsGoal(t *testing.T) {
	fb, c, rec := setup(t)
	read := fb.SeedGoal(email, "Read")
	fb.SeedGoal(email, "Run")
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.Remove(context.Background(), read.ID))
	assert.Equal(t, []string{"Run"}, titles(c.Goals()))
	_, ok := c.Find(read.ID)
	assert.False(t, ok)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.seen, 1)
	assert.Equal(t, "Read", rec.seen[0].GoalTitle)
}

func TestRemoveMissingGoalLeavesCache(t *testing.T) {
	fb, c, _ := setup(t)
	read := fb.SeedGoal(email, "Read")
	require.NoError(t, c.Refresh(context.Background()))

	fb.DeleteGoalDirect(read.ID)
	err := c.Remove(context.Background(), read.ID)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, []string{"Read"}, titles(c.Goals()))
}

func TestLogTimeUsesBackendTotals(t *testing.T) {
	fb, c, rec := setup(t)
	read := fb.SeedGoal(email, "Read", 15)
	require.NoError(t, c.Refresh(context.Background()))

	note := "ch 2"
	g, err := c.LogTime(context.Background(), read.ID, model.TimeEntryCreate{Minutes: 30, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, 45, g.TotalMinutes)
	require.Len(t, g.TimeEntries, 2)

	cached, ok := c.Find(read.ID)
	require.True(t, ok)
	assert.Equal(t, 45, cached.TotalMinutes)
	assert.Equal(t, 45, c.TotalMinutes())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.seen, 1)
	assert.Equal(t, 30, rec.seen[0].Minutes)
	assert.Equal(t, "ch 2", rec.seen[0].Note)
}

func TestRecorderFailureDoesNotFailMutation(t *testing.T) {
	fb, c, rec := setup(t)
	rec.err = errors.New("disk full")
	require.NoError(t, c.Refresh(context.Background()))

	_, err := c.Create(context.Background(), model.GoalCreate{Title: "Read"})
	require.NoError(t, err)
	assert.Equal(t, 1, fb.GoalCount())
	assert.Len(t, c.Goals(), 1)
}

func TestResetDiscardsInFlightRefresh(t *testing.T) {
	fb, c, _ := setup(t)
	fb.SeedGoal(email, "Read")
	release := fb.Hold(http.MethodGet, "/goals/")
	t.Cleanup(release)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()

	require.Eventually(t, func() bool {
		return fb.LastRequest().Path == "/goals/"
	}, time.Second, 5*time.Millisecond)

	c.Reset()
	release()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, goals.ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return")
	}
	assert.Empty(t, c.Goals())
	assert.True(t, c.Loading())
}

func TestCancelledContextDiscardsResponse(t *testing.T) {
	fb, c, rec := setup(t)
	release := fb.Hold(http.MethodPost, "/goals/")
	t.Cleanup(release)
	require.NoError(t, c.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Create(ctx, model.GoalCreate{Title: "Read"})
		done <- err
	}()

	require.Eventually(t, func() bool {
		return fb.LastRequest().Method == http.MethodPost
	}, time.Second, 5*time.Millisecond)
	cancel()
	release()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("create did not return")
	}
	assert.Empty(t, c.Goals())
	assert.Empty(t, rec.kinds())
}

func TestRefreshTwiceIsIdempotent(t *testing.T) {
	fb, c, _ := setup(t)
	fb.SeedGoal(email, "Read", 30)
	fb.SeedGoal(email, "Run")
	fb.SeedGoal(email, "Write", 10, 15)

	ids := func() []int64 {
		out := []int64{}
		for _, g := range c.Goals() {
			out = append(out, g.ID)
		}
		return out
	}

	require.NoError(t, c.Refresh(context.Background()))
	first := ids()
	require.NoError(t, c.Refresh(context.Background()))

	assert.Len(t, first, 3)
	assert.Equal(t, first, ids())
	assert.Equal(t, goals.StateReady, c.State().Kind)
}

func TestTimedOutRefreshFails(t *testing.T) {
	fb, c, _ := setup(t)
	fb.SeedGoal(email, "Read")
	require.NoError(t, c.Refresh(context.Background()))

	release := fb.Hold(http.MethodGet, "/goals/")
	t.Cleanup(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Refresh(ctx)

	require.Error(t, err)
	assert.NotErrorIs(t, err, goals.ErrStale)
	assert.False(t, c.Loading())
	assert.Equal(t, goals.StateFailed, c.State().Kind)
	assert.Equal(t, []string{"Read"}, titles(c.Goals()))
}

func TestCancelledRefreshClearsLoading(t *testing.T) {
	fb, c, _ := setup(t)
	fb.SeedGoal(email, "Read")
	require.NoError(t, c.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Refresh(ctx)

	assert.ErrorIs(t, err, goals.ErrStale)
	assert.False(t, c.Loading())
	assert.Equal(t, goals.StateReady, c.State().Kind)
	assert.Equal(t, []string{"Read"}, titles(c.Goals()))
}

func TestCancelledFirstRefreshIsNotLeftLoading(t *testing.T) {
	_, c, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Refresh(ctx), goals.ErrStale)

	assert.False(t, c.Loading())
	assert.Equal(t, goals.StateFailed, c.State().Kind)
	assert.ErrorIs(t, c.State().Err, context.Canceled)
}
