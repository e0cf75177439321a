package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskShowsQuestion(t *testing.T) {
	m := New(100)
	m.Ask(3, `Delete goal "Read"?`, "Delete")

	assert.Equal(t, `Delete goal "Read"?`, m.Question())
	assert.Contains(t, m.View(), "Delete")
}

func TestEscAnswersNo(t *testing.T) {
	m := New(100)
	m.Ask(3, "Sure?", "Yes")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ResultMsg{ID: 3, Confirmed: false}, cmd())
	assert.Empty(t, m.View())
}

func TestIdleDialogIgnoresInput(t *testing.T) {
	m := New(100)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
}
