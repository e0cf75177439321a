package goalform

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/model"
)

func TestStartCreate(t *testing.T) {
	m := New(100, 40)
	m.StartCreate()

	assert.False(t, m.EditMode())
	assert.Contains(t, m.View(), "Add Goal")
}

func TestStartEditPrefillsValues(t *testing.T) {
	desc := "every morning"
	m := New(100, 40)
	m.StartEdit(model.Goal{ID: 4, Title: "Run", Description: &desc})

	assert.True(t, m.EditMode())
	assert.Contains(t, m.View(), "Edit Goal")
	assert.Equal(t, "Run", m.fb.title)
	assert.Equal(t, "every morning", m.fb.description)
}

func TestSubmitCreateTrimsAndOmitsEmptyDescription(t *testing.T) {
	m := New(100, 40)
	m.StartCreate()
	m.fb.title = "  Read  "
	m.fb.description = "   "

	msg := m.handleSubmit()()
	require.IsType(t, GoalSubmittedMsg{}, msg)
	payload := msg.(GoalSubmittedMsg).Payload
	assert.Equal(t, "Read", payload.Title)
	assert.Nil(t, payload.Description)
}

func TestSubmitEditSendsBothFields(t *testing.T) {
	m := New(100, 40)
	m.StartEdit(model.Goal{ID: 9, Title: "Run"})
	m.fb.title = "Run 10k"

	msg := m.handleSubmit()()
	require.IsType(t, GoalEditedMsg{}, msg)
	edited := msg.(GoalEditedMsg)
	assert.Equal(t, int64(9), edited.GoalID)
	require.NotNil(t, edited.Payload.Title)
	assert.Equal(t, "Run 10k", *edited.Payload.Title)
	require.NotNil(t, edited.Payload.Description)
	assert.Empty(t, *edited.Payload.Description)
}

func TestEscCancels(t *testing.T) {
	m := New(100, 40)
	m.StartCreate()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, GoalFormCancelMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestFailKeepsValuesAndShowsError(t *testing.T) {
	m := New(100, 40)
	m.StartCreate()
	m.fb.title = "Read"
	m.submitting = true

	m.Fail(errors.New("create failed: backend unreachable"))

	assert.False(t, m.Submitting())
	assert.Equal(t, "Read", m.fb.title)
	assert.Contains(t, m.View(), "create failed: backend unreachable")
}

func TestCloseClearsDialog(t *testing.T) {
	m := New(100, 40)
	m.StartCreate()
	m.Close()

	assert.Empty(t, m.View())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
}
