package register

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/theme"
)

// FailureMessage is shown for any failed registration.
const FailureMessage = "Unable to create account. Please try again."

// SubmitMsg asks the parent to create an account and sign in.
type SubmitMsg struct {
	FullName string
	Email    string
	Password string
}

// SwitchToLoginMsg asks the parent to show the sign-in screen.
type SwitchToLoginMsg struct{}

var switchKey = key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "sign in"))

type formBindings struct {
	fullName string
	email    string
	password string
}

// Model is the registration screen.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	submitting bool
	err        string
	width      int
	height     int
}

// New creates the registration screen.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the screen.
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

// Submitting reports whether a registration is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// Update handles messages for the registration screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, switchKey) {
		return m, func() tea.Msg { return SwitchToLoginMsg{} }
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
		submit := SubmitMsg{
			FullName: strings.TrimSpace(m.fb.fullName),
			Email:    strings.TrimSpace(m.fb.email),
			Password: m.fb.password,
		}
		return m, func() tea.Msg { return submit }
	}

	return m, cmd
}

// View renders the registration screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := theme.TitleStyle.Render("Create account") + "\n"
	if m.err != "" {
		content += theme.ErrorStyle.Render(m.err) + "\n\n"
	}
	if m.submitting {
		content += theme.HelpStyle.Render("Creating account...")
	} else {
		content += m.form.View()
	}
	content += "\n" + theme.HelpStyle.Render(fmt.Sprintf("Have an account? %s", switchKey.Help().Key))

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
				Title("Full name").
				Value(&m.fb.fullName).
				Validate(validateRequired("Full name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
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

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("Email is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

// validatePassword enforces the backend's minimum length up front.
func validatePassword(s string) error {
	if len(s) < 8 {
		return fmt.Errorf("Password must be at least 8 characters")
	}
	return nil
}
