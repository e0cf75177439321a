package register

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validateEmail("ada@example.com"))
	assert.EqualError(t, validateEmail("  "), "Email is required")
	assert.EqualError(t, validateEmail("not-an-email"), "enter a valid email address")
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, validatePassword("longenough"))
	assert.Error(t, validatePassword("short"))
}

func TestFailShowsFixedMessage(t *testing.T) {
	m := New(100, 40)
	m.Start()
	m.submitting = true

	m.Fail()

	assert.Equal(t, FailureMessage, m.Err())
	assert.False(t, m.Submitting())
}

func TestCtrlLSwitchesToLogin(t *testing.T) {
	m := New(100, 40)
	m.Start()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	assert.Equal(t, SwitchToLoginMsg{}, cmd())
}
