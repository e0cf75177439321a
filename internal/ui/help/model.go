package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/theme"
)

// paletteCommands lists what the command palette understands.
var paletteCommands = [][2]string{
	{"refresh", "reload goals from the server"},
	{"new", "add a goal"},
	{"activity", "show the activity journal"},
	{"settings", "edit API and display settings"},
	{"goto <path>", "navigate to /, /login or /register"},
	{"logout", "sign out"},
	{"help", "show this screen"},
	{"quit", "exit"},
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	cmdTitle := titleStyle.MarginTop(1).Render("Commands (press :)")
	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue).Width(14)
	var cmds []string
	for _, c := range paletteCommands {
		cmds = append(cmds, nameStyle.Render(c[0])+theme.DimmedStyle.Render(c[1]))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, helpText, cmdTitle, lipgloss.JoinVertical(lipgloss.Left, cmds...))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
