package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/theme"
)

// Names lists the commands offered for completion.
var Names = []string{
	"refresh", "new", "activity", "settings",
	"goto /", "goto /login", "goto /register",
	"logout", "help", "quit",
}

// maxHistory bounds how many executed commands are remembered.
const maxHistory = 20

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Name returns the command word, lowercased.
func (c CommandMsg) Name() string {
	name, _, _ := strings.Cut(strings.TrimSpace(string(c)), " ")
	return strings.ToLower(name)
}

// Arg returns everything after the command word.
func (c CommandMsg) Arg() string {
	_, arg, _ := strings.Cut(strings.TrimSpace(string(c)), " ")
	return strings.TrimSpace(arg)
}

// CancelMsg is emitted when the user dismisses the palette.
type CancelMsg struct{}

// Model is the command palette. Tab completes a command name; up and
// down walk through earlier commands.
type Model struct {
	input   textinput.Model
	history []string
	// recall indexes history while browsing; len(history) means "not browsing".
	recall int
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh, new, activity, settings, goto /, logout, quit"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names)
	ti.KeyMap.NextSuggestion.SetEnabled(false)
	ti.KeyMap.PrevSuggestion.SetEnabled(false)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// History returns executed commands, oldest first.
func (m Model) History() []string {
	return m.history
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd == "" {
				return m, nil
			}
			m.remember(cmd)
			return m, func() tea.Msg { return CommandMsg(cmd) }

		case "esc":
			m.input.Reset()
			m.recall = len(m.history)
			return m, func() tea.Msg { return CancelMsg{} }

		case "up":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall < len(m.history) {
				m.recall++
			}
			if m.recall == len(m.history) {
				m.input.Reset()
			} else {
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// remember appends cmd to the history, dropping an immediate repeat.
func (m *Model) remember(cmd string) {
	if n := len(m.history); n == 0 || m.history[n-1] != cmd {
		m.history = append(m.history, cmd)
	}
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.recall = len(m.history)
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Command"),
		m.input.View(),
		theme.HelpStyle.MarginTop(1).Render("tab complete · ↑/↓ history · enter run · esc close"),
	)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
