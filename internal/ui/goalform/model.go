package goalform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/theme"
)

// GoalSubmittedMsg is dispatched when the create form is submitted.
type GoalSubmittedMsg struct {
	Payload model.GoalCreate
}

// GoalEditedMsg is dispatched when the edit form is submitted.
type GoalEditedMsg struct {
	GoalID  int64
	Payload model.GoalUpdate
}

// GoalFormCancelMsg is dispatched when the user cancels the form.
type GoalFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
}

// Model is the Bubble Tea model for the goal create/edit dialog. The
// dialog stays open while the request is in flight and only closes once
// the parent reports success via Close.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	editMode   bool
	editID     int64
	submitting bool
	err        string
	width      int
	height     int
}

// New creates a new goal form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new goal.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.fb.title = ""
	m.fb.description = ""
	m.submitting = false
	m.err = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing goal.
func (m *Model) StartEdit(g model.Goal) tea.Cmd {
	m.editMode = true
	m.editID = g.ID
	m.fb.title = g.Title
	m.fb.description = g.DescriptionText()
	m.submitting = false
	m.err = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Fail reports a failed submission; the dialog reopens with the entered
// values and the error.
func (m *Model) Fail(err error) tea.Cmd {
	m.submitting = false
	m.err = err.Error()
	m.form = m.buildForm()
	return m.form.Init()
}

// Close discards the form after a successful submission.
func (m *Model) Close() {
	m.form = nil
	m.submitting = false
	m.err = ""
}

// Submitting reports whether a submission is awaiting the backend.
func (m Model) Submitting() bool {
	return m.submitting
}

// EditMode reports whether the form edits an existing goal.
func (m Model) EditMode() bool {
	return m.editMode
}

// Update handles messages for the goal form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return GoalFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the goal dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText, submit := "Add Goal", "Create"
	if m.editMode {
		titleText, submit = "Edit Goal", "Save"
	}

	content := theme.TitleStyle.Render(titleText) + "\n"
	if m.err != "" {
		content += theme.ErrorStyle.Render(m.err) + "\n\n"
	}
	if m.submitting {
		content += theme.HelpStyle.Render("Saving...")
	} else {
		content += m.form.View() + "\n" +
			theme.HelpStyle.Render("enter on the last field to "+strings.ToLower(submit)+" · esc cancel")
	}

	return theme.DialogStyle.
		Width(m.formWidth() + 4).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Read 20 books").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
		),
	).WithKeyMap(formKeyMap()).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	title := strings.TrimSpace(m.fb.title)
	description := strings.TrimSpace(m.fb.description)

	if m.editMode {
		id := m.editID
		payload := model.GoalUpdate{Title: &title, Description: &description}
		return func() tea.Msg { return GoalEditedMsg{GoalID: id, Payload: payload} }
	}

	payload := model.GoalCreate{Title: title, Description: model.OptionalString(description)}
	return func() tea.Msg { return GoalSubmittedMsg{Payload: payload} }
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 8
	if h < 10 {
		h = 10
	}
	return h
}

// formKeyMap makes esc abort the form.
func formKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	return km
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
