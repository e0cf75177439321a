package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/store"
	"github.com/nhle/goal-tracker/internal/theme"
)

// pageSize is how many journal entries the view loads.
const pageSize = 200

// ActivityCloseMsg signals the parent to leave the activity view.
type ActivityCloseMsg struct{}

// ActivityLoadedMsg carries journal entries and the weekly total.
type ActivityLoadedMsg struct {
	Entries     []model.Activity
	WeekMinutes int
	Err         error
}

// Journal is the read side of the activity store.
type Journal interface {
	ListActivity(ctx context.Context, filter store.ActivityFilter) ([]model.Activity, error)
	MinutesLogged(ctx context.Context, since time.Time) (int, error)
}

// Model shows what this client has changed recently.
type Model struct {
	journal     Journal
	entries     []model.Activity
	weekMinutes int
	err         error
	loading     bool
	viewport    viewport.Model
	keys        *keys.KeyMap
	width       int
	height      int
	now         func() time.Time
}

// New creates the activity view. journal may be nil when the journal is
// unavailable; the view then explains that.
func New(journal Journal, k *keys.KeyMap, width, height int) Model {
	return Model{
		journal:  journal,
		viewport: viewport.New(width, height-2),
		keys:     k,
		width:    width,
		height:   height,
		now:      time.Now,
	}
}

// Init loads the journal.
func (m *Model) Init() tea.Cmd {
	if m.journal == nil {
		return nil
	}
	m.loading = true
	return m.load()
}

func (m Model) load() tea.Cmd {
	j := m.journal
	weekStart := startOfWeek(m.now())
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := j.ListActivity(ctx, store.ActivityFilter{Limit: pageSize})
		if err != nil {
			return ActivityLoadedMsg{Err: err}
		}
		week, err := j.MinutesLogged(ctx, weekStart)
		if err != nil {
			return ActivityLoadedMsg{Err: err}
		}
		return ActivityLoadedMsg{Entries: entries, WeekMinutes: week}
	}
}

// Update handles messages for the activity view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ActivityLoadedMsg:
		m.loading = false
		m.err = msg.Err
		m.entries = msg.Entries
		m.weekMinutes = msg.WeekMinutes
		m.viewport.SetContent(m.renderEntries())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Activity):
			return m, func() tea.Msg { return ActivityCloseMsg{} }
		case key.Matches(msg, m.keys.Refresh):
			if m.journal == nil {
				return m, nil
			}
			m.loading = true
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity view.
func (m Model) View() string {
	header := theme.TitleStyle.Render("Activity") + "  " +
		theme.DimmedStyle.Render("logged this week: "+model.FormatMinutes(m.weekMinutes))

	var body string
	switch {
	case m.journal == nil:
		body = theme.HelpStyle.Render("The activity journal is not available.")
	case m.loading && len(m.entries) == 0:
		body = theme.HelpStyle.Render("Loading activity...")
	case m.err != nil:
		body = theme.ErrorStyle.Render("Could not read activity: " + m.err.Error())
	case len(m.entries) == 0:
		body = theme.HelpStyle.Render("Nothing yet. Changes you make to goals show up here.")
	default:
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderEntries() string {
	lines := make([]string, 0, len(m.entries))
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for _, a := range m.entries {
		marker := theme.ActivityKindStyle(string(a.Kind)).Render("●")
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			marker,
			timeStyle.Render(a.CreatedAt.Local().Format("Jan 02 15:04")),
			a.Summary(),
		))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// startOfWeek returns local midnight of the most recent Monday.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, mo, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
