package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/store"
)

type fakeJournal struct {
	entries []model.Activity
	since   time.Time
	minutes int
	err     error
}

func (f *fakeJournal) ListActivity(_ context.Context, _ store.ActivityFilter) ([]model.Activity, error) {
	return f.entries, f.err
}

func (f *fakeJournal) MinutesLogged(_ context.Context, since time.Time) (int, error) {
	f.since = since
	return f.minutes, nil
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{"monday", time.Date(2026, 10, 12, 0, 5, 0, 0, time.UTC), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, startOfWeek(tt.in))
		})
	}
}

func TestNilJournal(t *testing.T) {
	m := New(nil, keys.DefaultKeyMap(), 100, 30)
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "The activity journal is not available.")
}

func TestLoadShowsEntriesAndWeeklyTotal(t *testing.T) {
	j := &fakeJournal{
		entries: []model.Activity{
			{ID: "b", Kind: model.ActivityTimeLogged, GoalTitle: "Read", Minutes: 30, Note: "chapter 3", CreatedAt: time.Now()},
			{ID: "a", Kind: model.ActivityGoalCreated, GoalTitle: "Read", CreatedAt: time.Now().Add(-time.Minute)},
		},
		minutes: 90,
	}
	m := New(j, keys.DefaultKeyMap(), 100, 30)
	m.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local) }

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading activity...")

	m, _ = m.Update(cmd())
	view := m.View()
	assert.Contains(t, view, "logged this week: 1h 30m")
	assert.Contains(t, view, `Logged 30 min on "Read": chapter 3`)
	assert.Contains(t, view, `Created goal "Read"`)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local), j.since)
}

func TestLoadError(t *testing.T) {
	m := New(&fakeJournal{err: errors.New("database is locked")}, keys.DefaultKeyMap(), 100, 30)
	cmd := m.Init()

	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "Could not read activity: database is locked")
}

func TestEmptyJournal(t *testing.T) {
	m := New(&fakeJournal{}, keys.DefaultKeyMap(), 100, 30)
	cmd := m.Init()

	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "Nothing yet.")
}

func TestEscCloses(t *testing.T) {
	m := New(nil, keys.DefaultKeyMap(), 100, 30)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ActivityCloseMsg{}, cmd())
}
