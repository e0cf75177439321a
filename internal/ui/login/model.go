package login

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/theme"
)

// FailureMessage is shown for any failed sign-in, whatever the cause.
const FailureMessage = "Invalid email or password"

// SubmitMsg asks the parent to sign in with the entered credentials.
type SubmitMsg struct {
	Email    string
	Password string
}

// SwitchToRegisterMsg asks the parent to show the registration screen.
type SwitchToRegisterMsg struct{}

var switchKey = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "create an account"))

type formBindings struct {
	email    string
	password string
}

// Model is the sign-in screen.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	submitting bool
	err        string
	width      int
	height     int
}

// New creates the sign-in screen.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the screen. The email is kept to make retries easier.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.submitting = false
	m.err = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Fail shows the fixed failure message and reopens the form.
func (m *Model) Fail() tea.Cmd {
	m.submitting = false
	m.err = FailureMessage
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Err returns the message currently shown, if any.
func (m Model) Err() string {
	return m.err
}

// Submitting reports whether a sign-in is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, switchKey) {
		return m, func() tea.Msg { return SwitchToRegisterMsg{} }
	}
	if m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		submit := SubmitMsg{Email: strings.TrimSpace(m.fb.email), Password: m.fb.password}
		return m, func() tea.Msg { return submit }
	}

	return m, cmd
}

// View renders the sign-in screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := theme.TitleStyle.Render("Sign in") + "\n"
	if m.err != "" {
		content += theme.ErrorStyle.Render(m.err) + "\n\n"
	}
	if m.submitting {
		content += theme.HelpStyle.Render("Signing in...")
	} else {
		content += m.form.View()
	}
	content += "\n" + theme.HelpStyle.Render(fmt.Sprintf("No account? %s", switchKey.Help().Key))

	box := theme.DialogStyle.Width(48).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(40)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
