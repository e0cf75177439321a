package timeform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/theme"
)

// TimeLoggedMsg is dispatched when the user submits a time entry.
type TimeLoggedMsg struct {
	GoalID  int64
	Payload model.TimeEntryCreate
}

// TimeFormCancelMsg is dispatched when the user cancels the dialog.
type TimeFormCancelMsg struct{}

type formBindings struct {
	minutes string
	note    string
}

// Model is the "Log time" dialog.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	goal       model.Goal
	submitting bool
	err        string
	width      int
	height     int
}

// New creates a new time entry form.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start opens the dialog for goal g with empty fields.
func (m *Model) Start(g model.Goal) tea.Cmd {
	m.goal = g
	m.fb.minutes = ""
	m.fb.note = ""
	m.submitting = false
	m.err = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Fail reopens the dialog with the entered values and an error.
func (m *Model) Fail(err error) tea.Cmd {
	m.submitting = false
	m.err = err.Error()
	m.form = m.buildForm()
	return m.form.Init()
}

// Close discards the dialog after a successful submission.
func (m *Model) Close() {
	m.form = nil
	m.submitting = false
	m.err = ""
}

// Submitting reports whether a submission is awaiting the backend.
func (m Model) Submitting() bool {
	return m.submitting
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		minutes, err := ParseMinutes(m.fb.minutes)
		if err != nil {
			// Validation already ran; only reachable if the form was bypassed.
			return m, m.Fail(err)
		}
		m.submitting = true
		payload := model.TimeEntryCreate{Minutes: minutes, Note: model.OptionalString(m.fb.note)}
		id := m.goal.ID
		return m, func() tea.Msg { return TimeLoggedMsg{GoalID: id, Payload: payload} }

	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return TimeFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := theme.TitleStyle.Render("Log time") + "\n" +
		theme.DimmedStyle.Render(fmt.Sprintf("%s · %s so far", m.goal.Title, model.FormatMinutes(m.goal.TotalMinutes))) +
		"\n\n"
	if m.err != "" {
		content += theme.ErrorStyle.Render(m.err) + "\n\n"
	}
	if m.submitting {
		content += theme.HelpStyle.Render("Saving...")
	} else {
		content += m.form.View()
	}

	return theme.DialogStyle.Width(m.formWidth() + 4).Render(content)
}

// SetSize updates the dialog dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minutes").
				Placeholder("30").
				CharLimit(6).
				Value(&m.fb.minutes).
				Validate(func(s string) error {
					_, err := ParseMinutes(s)
					return err
				}),
			huh.NewInput().
				Title("Note").
				Placeholder("Optional").
				Value(&m.fb.note),
		),
	).WithKeyMap(km).WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 60 {
		w = 60
	}
	return w
}

// ParseMinutes parses a positive whole number of minutes.
func ParseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("minutes are required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("minutes must be a whole number")
	}
	if n <= 0 {
		return 0, errors.New("minutes must be greater than 0")
	}
	return n, nil
}
