package goallist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/goals"
	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/theme"
)

// EmptyMessage is shown when the user has no goals yet.
const EmptyMessage = "Start by creating your first goal."

// SelectedGoalMsg is sent when a user opens a goal.
type SelectedGoalMsg struct {
	GoalID int64
}

// Model is the dashboard's goal list.
type Model struct {
	list        list.Model
	spinner     spinner.Model
	keys        *keys.KeyMap
	all         []model.Goal
	state       goals.LoadState
	query       string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new goal list model in the loading state.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, GoalDelegate{}, width, height-2)
	l.Title = "Goals"
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("goal", "goals")
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "filter goals..."
	si.Prompt = "/ "
	si.Width = width - 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		list:        l,
		spinner:     sp,
		keys:        k,
		state:       goals.LoadState{Kind: goals.StateLoading},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init starts the loading spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetGoals replaces the displayed goals and load state, keeping the
// cursor on the same goal when it is still present.
func (m *Model) SetGoals(gs []model.Goal, state goals.LoadState) tea.Cmd {
	m.all = gs
	m.state = state
	return m.applyFilter()
}

// SetLoading flags a refresh in flight and restarts the spinner.
func (m *Model) SetLoading() tea.Cmd {
	m.state = goals.LoadState{Kind: goals.StateLoading}
	return m.spinner.Tick
}

// State returns the load state being displayed.
func (m Model) State() goals.LoadState {
	return m.state
}

// Searching reports whether the filter input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SelectedGoal returns the goal under the cursor.
func (m Model) SelectedGoal() (model.Goal, bool) {
	item, ok := m.list.SelectedItem().(GoalItem)
	if !ok {
		return model.Goal{}, false
	}
	return item.Goal, true
}

// Query returns the active filter text.
func (m Model) Query() string {
	return m.query
}

// Update handles messages for the goal list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state.Kind != goals.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while the filter is focused.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		return m, m.applyFilter()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.applyFilter()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		g, ok := m.SelectedGoal()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedGoalMsg{GoalID: g.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// applyFilter rebuilds the list items from all goals and the query.
func (m *Model) applyFilter() tea.Cmd {
	selected, hadSelection := m.SelectedGoal()

	q := strings.ToLower(m.query)
	items := make([]list.Item, 0, len(m.all))
	cursor := -1
	for _, g := range m.all {
		item := GoalItem{Goal: g}
		if q != "" && !strings.Contains(strings.ToLower(item.FilterValue()), q) {
			continue
		}
		if hadSelection && g.ID == selected.ID {
			cursor = len(items)
		}
		items = append(items, item)
	}

	cmd := m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// View renders the goal list view.
func (m Model) View() string {
	var sections []string

	if m.searchMode {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View()))
	} else if m.query != "" {
		sections = append(sections, theme.HelpStyle.
			Padding(0, 1).
			Render(fmt.Sprintf("filter: %q (/ to change, esc in filter to clear)", m.query)))
	}

	switch {
	case m.state.Kind == goals.StateLoading && len(m.all) == 0:
		sections = append(sections, m.centered(m.spinner.View()+" Loading goals..."))

	case m.state.Kind == goals.StateFailed && len(m.all) == 0:
		sections = append(sections, m.renderFailed())

	case len(m.all) == 0:
		sections = append(sections, m.centered(EmptyMessage+"\n\nPress n to add a goal."))

	case len(m.list.Items()) == 0:
		sections = append(sections, m.centered("No goals match the filter."))

	default:
		if m.state.Kind == goals.StateFailed {
			sections = append(sections, theme.ErrorStyle.Padding(0, 1).Render(
				fmt.Sprintf("Showing the last loaded goals. Refresh failed: %s (r to retry)", reason(m.state.Err))))
		} else if m.state.Kind == goals.StateLoading {
			sections = append(sections, theme.HelpStyle.Padding(0, 1).Render(m.spinner.View()+" refreshing"))
		}
		sections = append(sections, m.list.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderFailed() string {
	msg := theme.ErrorStyle.Render("Could not load goals: "+reason(m.state.Err)) +
		"\n\n" + theme.HelpStyle.Render("r to retry")
	return m.centered(msg)
}

func (m Model) centered(s string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(s)
}

func reason(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
