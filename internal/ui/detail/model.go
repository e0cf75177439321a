package detail

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// EntriesLoadedMsg carries the time entries fetched for a goal.
type EntriesLoadedMsg struct {
	GoalID  int64
	Entries []model.TimeEntry
	Err     error
}

// Action names carried by ActionMsg.
const (
	ActionEdit    = "edit"
	ActionLogTime = "log"
	ActionDelete  = "delete"
)

// ActionMsg asks the parent to act on the displayed goal.
type ActionMsg struct {
	Action string
	GoalID int64
}

// Model is the goal detail view component.
type Model struct {
	goal     *model.Goal
	entries  []model.TimeEntry
	entryErr error
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// GoalID returns the displayed goal's id, or 0.
func (m Model) GoalID() int64 {
	if m.goal == nil {
		return 0
	}
	return m.goal.ID
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EntriesLoadedMsg:
		if m.goal == nil || msg.GoalID != m.goal.ID {
			return m, nil
		}
		m.loading = false
		m.entryErr = msg.Err
		if msg.Err == nil {
			m.entries = msg.Entries
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Edit):
			return m, m.action(ActionEdit)

		case key.Matches(msg, m.keys.LogTime):
			return m, m.action(ActionLogTime)

		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.goal == nil {
		return nil
	}
	id := m.goal.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, GoalID: id}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.goal == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No goal selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.goal == nil {
		return ""
	}

	g := m.goal
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleStyle.Render(g.Title),
		"  ",
		theme.MinutesChipStyle(g.TotalMinutes).Render(model.FormatMinutes(g.TotalMinutes)),
	))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	if !g.CreatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Created:"),
			valStyle.Render(g.CreatedAt.Local().Format("2006-01-02 15:04")),
		))
	}
	if !g.UpdatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Updated:"),
			valStyle.Render(g.UpdatedAt.Local().Format("2006-01-02 15:04")),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, headerStyle.Render("Description"))
	body := g.DescriptionText()
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body, "", separator, "")

	sections = append(sections, m.renderEntries(headerStyle)...)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderEntries(headerStyle lipgloss.Style) []string {
	switch {
	case m.loading:
		return []string{headerStyle.Render("Time entries"), theme.HelpStyle.Render("Loading time entries...")}
	case m.entryErr != nil:
		return []string{
			headerStyle.Render("Time entries"),
			theme.ErrorStyle.Render("Could not load time entries: " + m.entryErr.Error()),
		}
	}

	// Newest first.
	entries := make([]model.TimeEntry, len(m.entries))
	copy(entries, m.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt.Time)
	})

	out := []string{headerStyle.Render(fmt.Sprintf("Time entries (%d)", len(entries)))}
	if len(entries) == 0 {
		return append(out, theme.HelpStyle.Render("No time logged yet. Press t to log time."))
	}

	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s",
			timeStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			theme.MinutesChipStyle(e.Minutes).Render(model.FormatMinutes(e.Minutes)),
		)
		if note := e.NoteText(); note != "" {
			line += "  " + note
		}
		out = append(out, line)
	}
	return out
}

// SetGoal shows g, using its embedded entries until fresh ones arrive.
func (m *Model) SetGoal(g model.Goal) {
	m.goal = &g
	m.entries = g.TimeEntries
	m.entryErr = nil
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// UpdateGoal refreshes the displayed goal without resetting the scroll
// position. Ignored if another goal is shown.
func (m *Model) UpdateGoal(g model.Goal) {
	if m.goal == nil || m.goal.ID != g.ID {
		return
	}
	m.goal = &g
	m.entries = g.TimeEntries
	m.viewport.SetContent(m.renderContent())
}

// SetLoading sets the loading state for the entries section.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
	m.viewport.SetContent(m.renderContent())
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
