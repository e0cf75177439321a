// Package confirm is a yes/no dialog.
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/goal-tracker/internal/theme"
)

// ResultMsg reports the user's answer. ID echoes the value passed to Ask.
type ResultMsg struct {
	ID        int64
	Confirmed bool
}

type bindings struct {
	yes bool
}

// Model asks a single question.
type Model struct {
	form     *huh.Form
	b        *bindings
	id       int64
	question string
	width    int
}

// New creates an idle dialog.
func New(width int) Model {
	return Model{b: &bindings{}, width: width}
}

// Ask opens the dialog. The default answer is no.
func (m *Model) Ask(id int64, question, affirmative string) tea.Cmd {
	m.id = id
	m.question = question
	m.b.yes = false

	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"))

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&m.b.yes),
		),
	).WithKeyMap(km).WithShowHelp(false).WithWidth(min(max(m.width-8, 30), 70))
	return m.form.Init()
}

// Question returns the question being asked.
func (m Model) Question() string {
	return m.question
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		res := ResultMsg{ID: m.id, Confirmed: m.b.yes}
		m.form = nil
		return m, func() tea.Msg { return res }
	case huh.StateAborted:
		res := ResultMsg{ID: m.id}
		m.form = nil
		return m, func() tea.Msg { return res }
	}
	return m, cmd
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return theme.DialogStyle.Render(m.form.View())
}

// SetSize updates the dialog width.
func (m *Model) SetSize(width int) {
	m.width = width
}
