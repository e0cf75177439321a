package detail

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
)

func ptr(s string) *string { return &s }

func newDetail() Model {
	return New(keys.DefaultKeyMap(), 100, 40)
}

func entryAt(id int64, minutes int, note string, at time.Time) model.TimeEntry {
	return model.TimeEntry{ID: id, Minutes: minutes, Note: ptr(note), CreatedAt: model.Timestamp{Time: at}}
}

func TestViewWithoutGoal(t *testing.T) {
	m := newDetail()
	assert.Contains(t, m.View(), "No goal selected")
	assert.Zero(t, m.GoalID())
}

func TestViewShowsGoalAndEntriesNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := newDetail()
	m.SetGoal(model.Goal{
		ID:           1,
		Title:        "Read",
		Description:  ptr("Finish two books"),
		TotalMinutes: 75,
		TimeEntries: []model.TimeEntry{
			entryAt(1, 45, "older entry", base),
			entryAt(2, 30, "newer entry", base.Add(time.Hour)),
		},
	})

	view := m.View()
	assert.Contains(t, view, "Read")
	assert.Contains(t, view, "1h 15m")
	assert.Contains(t, view, "Finish two books")
	assert.Contains(t, view, "Time entries (2)")
	assert.Less(t, strings.Index(view, "newer entry"), strings.Index(view, "older entry"))
}

func TestViewWithoutDescriptionOrEntries(t *testing.T) {
	m := newDetail()
	m.SetGoal(model.Goal{ID: 1, Title: "Read"})

	view := m.View()
	assert.Contains(t, view, "No description")
	assert.Contains(t, view, "No time logged yet.")
}

func TestEntriesForAnotherGoalAreIgnored(t *testing.T) {
	m := newDetail()
	m.SetGoal(model.Goal{ID: 1, Title: "Read"})
	m.SetLoading(true)

	m, _ = m.Update(EntriesLoadedMsg{GoalID: 2, Entries: []model.TimeEntry{entryAt(9, 10, "not mine", time.Now())}})
	assert.Contains(t, m.View(), "Loading time entries...")

	m, _ = m.Update(EntriesLoadedMsg{GoalID: 1, Entries: []model.TimeEntry{entryAt(3, 20, "mine", time.Now())}})
	view := m.View()
	assert.Contains(t, view, "mine")
	assert.NotContains(t, view, "not mine")
}

func TestEntriesLoadError(t *testing.T) {
	m := newDetail()
	m.SetGoal(model.Goal{ID: 1, Title: "Read"})
	m.SetLoading(true)

	m, _ = m.Update(EntriesLoadedMsg{GoalID: 1, Err: errors.New("backend unreachable")})
	assert.Contains(t, m.View(), "Could not load time entries: backend unreachable")
}

func TestUpdateGoalIgnoresOtherGoal(t *testing.T) {
	m := newDetail()
	m.SetGoal(model.Goal{ID: 1, Title: "Read"})

	m.UpdateGoal(model.Goal{ID: 2, Title: "Run"})
	assert.Equal(t, int64(1), m.GoalID())
	assert.NotContains(t, m.View(), "Run")

	m.UpdateGoal(model.Goal{ID: 1, Title: "Read more"})
	assert.Contains(t, m.View(), "Read more")
}

func TestKeysEmitActions(t *testing.T) {
	m := newDetail()
	m.SetGoal(model.Goal{ID: 5, Title: "Read"})

	tests := []struct {
		key  rune
		want string
	}{
		{'e', ActionEdit},
		{'t', ActionLogTime},
		{'d', ActionDelete},
	}
	for _, tt := range tests {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
		require.NotNil(t, cmd, string(tt.key))
		assert.Equal(t, ActionMsg{Action: tt.want, GoalID: 5}, cmd())
	}
}

func TestEscGoesBack(t *testing.T) {
	m := newDetail()
	m.SetGoal(model.Goal{ID: 5, Title: "Read"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}
