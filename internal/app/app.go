package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/auth"
	"github.com/nhle/goal-tracker/internal/goals"
	"github.com/nhle/goal-tracker/internal/keys"
	"github.com/nhle/goal-tracker/internal/model"
	appsync "github.com/nhle/goal-tracker/internal/sync"
	"github.com/nhle/goal-tracker/internal/theme"
	"github.com/nhle/goal-tracker/internal/ui"
	"github.com/nhle/goal-tracker/internal/ui/activity"
	"github.com/nhle/goal-tracker/internal/ui/command"
	"github.com/nhle/goal-tracker/internal/ui/confirm"
	"github.com/nhle/goal-tracker/internal/ui/detail"
	"github.com/nhle/goal-tracker/internal/ui/goalform"
	"github.com/nhle/goal-tracker/internal/ui/goallist"
	helpview "github.com/nhle/goal-tracker/internal/ui/help"
	"github.com/nhle/goal-tracker/internal/ui/login"
	"github.com/nhle/goal-tracker/internal/ui/register"
	"github.com/nhle/goal-tracker/internal/ui/settings"
	"github.com/nhle/goal-tracker/internal/ui/timeform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	// ViewStarting is shown until the start route has been resolved.
	ViewStarting ViewState = iota
	ViewLogin
	ViewRegister
	ViewDashboard
	ViewDetail
	ViewGoalForm
	ViewTimeForm
	ViewConfirmDelete
	ViewActivity
	ViewSettings
	ViewHelp
	ViewCommand
)

// NavigateMsg asks the root model to navigate to a route. The route guard
// decides where the user actually lands.
type NavigateMsg struct {
	Route Route
}

// Deps are the collaborators of the root model.
type Deps struct {
	Auth   *auth.Auth
	Client *api.Client
	Goals  *goals.Collection

	// Journal backs the activity view. Nil leaves the view empty.
	Journal activity.Journal

	Config     model.AppConfig
	ConfigPath string

	// Start is the first route requested; empty means the dashboard.
	Start Route
}

// Model is the root Bubble Tea model that manages routing, view state,
// layout, and the lifetime of the dashboard.
type Model struct {
	currentView  ViewState
	previousView ViewState
	route        Route
	from         Route
	start        Route
	layout       ui.Layout
	keys         *keys.KeyMap

	auth   *auth.Auth
	client *api.Client
	goals  *goals.Collection
	cfg    model.AppConfig

	loginView    login.Model
	registerView register.Model
	goalList     goallist.Model
	detail       detail.Model
	goalForm     goalform.Model
	timeForm     timeform.Model
	confirm      confirm.Model
	activityView activity.Model
	settingsView settings.Model
	helpView     helpview.Model
	commandView  command.Model

	// Dashboard lifetime: created on entry, torn down on exit.
	dashCtx    context.Context
	dashCancel context.CancelFunc
	poller     *appsync.Poller

	sessionCh chan struct{}
	statusErr string
	notice    string
	ready     bool
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	start := d.Start
	if start == "" {
		start = RouteDashboard
	}

	m := Model{
		currentView:  ViewStarting,
		start:        start,
		keys:         k,
		auth:         d.Auth,
		client:       d.Client,
		goals:        d.Goals,
		cfg:          d.Config,
		loginView:    login.New(80, 24),
		registerView: register.New(80, 24),
		goalList:     goallist.New(k, 80, 24),
		detail:       detail.New(k, 80, 24),
		goalForm:     goalform.New(80, 24),
		timeForm:     timeform.New(80, 24),
		confirm:      confirm.New(80),
		activityView: activity.New(d.Journal, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		sessionCh:    make(chan struct{}, 1),
	}
	m.settingsView = settings.New(d.Config, pingFunc(m.requestTimeout()), saveFunc(d.ConfigPath), k, 80, 24)

	ch := m.sessionCh
	d.Auth.Session().Subscribe(func(string) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return m
}

// Init requests the start route and begins listening for session changes.
func (m Model) Init() tea.Cmd {
	start := m.start
	return tea.Batch(
		func() tea.Msg { return NavigateMsg{Route: start} },
		m.waitForSession(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.registerView.SetSize(w, h)
		m.goalList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.goalForm.SetSize(w, h)
		m.timeForm.SetSize(w, h)
		m.confirm.SetSize(w)
		m.activityView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case NavigateMsg:
		return m, m.navigate(msg.Route)

	case sessionChangedMsg:
		return m, tea.Batch(m.syncRoute(), m.waitForSession())

	case login.SubmitMsg:
		return m, m.login(msg.Email, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			if !api.IsAuthError(msg.err) {
				log.Printf("sign in: %v", msg.err)
			}
			return m, m.loginView.Fail()
		}
		return m, m.syncRoute()

	case login.SwitchToRegisterMsg:
		return m, m.navigate(RouteRegister)

	case register.SubmitMsg:
		return m, m.register(msg.FullName, msg.Email, msg.Password)

	case registerResultMsg:
		if msg.err != nil {
			if !api.IsAuthError(msg.err) {
				log.Printf("register: %v", msg.err)
			}
			return m, m.registerView.Fail()
		}
		return m, m.syncRoute()

	case register.SwitchToLoginMsg:
		return m, m.navigate(RouteLogin)

	case logoutResultMsg:
		if msg.err != nil {
			log.Printf("sign out: %v", msg.err)
			m.statusErr = "Sign out failed: " + msg.err.Error()
			return m, nil
		}
		return m, m.syncRoute()

	case appsync.RefreshResultMsg:
		if m.route != RouteDashboard || m.poller == nil {
			return m, nil
		}
		if msg.Unauthorized {
			return m, m.expireSession()
		}
		if msg.Error != nil {
			log.Printf("refreshing goals: %v", msg.Error)
		}
		if g, ok := m.goals.Find(m.detail.GoalID()); ok {
			m.detail.UpdateGoal(g)
		}
		return m, tea.Batch(m.syncList(), m.poller.WaitForNextResult())

	case goallist.SelectedGoalMsg:
		return m, m.openDetail(msg.GoalID)

	case detail.BackMsg:
		m.currentView = ViewDashboard
		return m, nil

	case detail.ActionMsg:
		g, ok := m.goals.Find(msg.GoalID)
		if !ok {
			return m, nil
		}
		switch msg.Action {
		case detail.ActionEdit:
			return m, m.openEditGoal(g)
		case detail.ActionLogTime:
			return m, m.openLogTime(g)
		case detail.ActionDelete:
			return m, m.askDelete(g)
		}
		return m, nil

	case detail.EntriesLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case goalform.GoalSubmittedMsg:
		return m, m.createGoal(msg.Payload)

	case goalform.GoalEditedMsg:
		return m, m.updateGoal(msg.GoalID, msg.Payload)

	case goalform.GoalFormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case goalSavedMsg:
		op := "Creating goal"
		if msg.edit {
			op = "Saving goal"
		}
		switch classify(op, msg.err) {
		case outcomeStale:
			return m, nil
		case outcomeExpired:
			return m, m.expireSession()
		case outcomeFailed:
			m.statusErr = errorText(op, msg.err)
			return m, m.goalForm.Fail(msg.err)
		}
		m.goalForm.Close()
		m.currentView = m.previousView
		m.detail.UpdateGoal(msg.goal)
		if msg.edit {
			m.notice = fmt.Sprintf("Saved %q", msg.goal.Title)
		} else {
			m.notice = fmt.Sprintf("Created %q", msg.goal.Title)
		}
		return m, m.syncList()

	case timeform.TimeLoggedMsg:
		return m, m.logTime(msg.GoalID, msg.Payload)

	case timeform.TimeFormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case timeLoggedResultMsg:
		switch classify("Logging time", msg.err) {
		case outcomeStale:
			return m, nil
		case outcomeExpired:
			return m, m.expireSession()
		case outcomeFailed:
			m.statusErr = errorText("Logging time", msg.err)
			return m, m.timeForm.Fail(msg.err)
		}
		m.timeForm.Close()
		m.currentView = m.previousView
		m.notice = fmt.Sprintf("Logged time on %q, %s total", msg.goal.Title, model.FormatMinutes(msg.goal.TotalMinutes))
		cmds := []tea.Cmd{m.syncList()}
		if m.detail.GoalID() == msg.goal.ID {
			m.detail.UpdateGoal(msg.goal)
			cmds = append(cmds, m.loadEntries(msg.goal.ID))
		}
		return m, tea.Batch(cmds...)

	case confirm.ResultMsg:
		m.currentView = m.previousView
		if !msg.Confirmed {
			return m, nil
		}
		return m, m.deleteGoal(msg.ID)

	case goalDeletedMsg:
		switch classify("Deleting goal", msg.err) {
		case outcomeStale:
			return m, nil
		case outcomeExpired:
			return m, m.expireSession()
		case outcomeFailed:
			m.statusErr = errorText("Deleting goal", msg.err)
			return m, nil
		}
		if m.detail.GoalID() == msg.id && m.currentView == ViewDetail {
			m.currentView = ViewDashboard
		}
		m.notice = fmt.Sprintf("Deleted %q", msg.title)
		return m, m.syncList()

	case activity.ActivityCloseMsg:
		m.currentView = ViewDashboard
		return m, nil

	case activity.ActivityLoadedMsg:
		var cmd tea.Cmd
		m.activityView, cmd = m.activityView.Update(msg)
		return m, cmd

	case settings.SettingsDoneMsg:
		m.currentView = m.previousView
		return m, nil

	case settings.SettingsSavedMsg:
		m.currentView = m.previousView
		return m, m.applyConfig(msg.Config)

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		m.statusErr = ""

		// Global keys that work regardless of current view
		if msg.String() == "ctrl+c" {
			m.shutdown()
			return m, tea.Quit
		}

		if m.currentView == ViewCommand {
			if key.Matches(msg, m.keys.Command) {
				m.currentView = m.previousView
				return m, nil
			}
			break
		}
		if m.inputFocused() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.currentView == ViewDashboard {
				m.shutdown()
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
		}

		if m.currentView == ViewDashboard {
			if cmd, ok := m.handleDashboardKey(msg); ok {
				return m, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleDashboardKey runs the goal list shortcuts. ok is false when the
// key is not a shortcut and should reach the list itself.
func (m *Model) handleDashboardKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.New):
		return m.openCreateGoal(), true

	case key.Matches(msg, m.keys.Edit):
		if g, ok := m.goalList.SelectedGoal(); ok {
			return m.openEditGoal(g), true
		}
		return nil, true

	case key.Matches(msg, m.keys.LogTime):
		if g, ok := m.goalList.SelectedGoal(); ok {
			return m.openLogTime(g), true
		}
		return nil, true

	case key.Matches(msg, m.keys.Delete):
		if g, ok := m.goalList.SelectedGoal(); ok {
			return m.askDelete(g), true
		}
		return nil, true

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh(), true

	case key.Matches(msg, m.keys.Activity):
		return m.openActivity(), true

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings(), true

	case key.Matches(msg, m.keys.Logout):
		return m.logout(), true
	}
	return nil, false
}

// inputFocused reports whether the active view owns every keystroke.
func (m Model) inputFocused() bool {
	switch m.currentView {
	case ViewStarting, ViewLogin, ViewRegister, ViewGoalForm, ViewTimeForm, ViewConfirmDelete, ViewSettings:
		return true
	case ViewDashboard:
		return m.goalList.Searching()
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case ViewDashboard:
		m.goalList, cmd = m.goalList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewGoalForm:
		m.goalForm, cmd = m.goalForm.Update(msg)
	case ViewTimeForm:
		m.timeForm, cmd = m.timeForm.Update(msg)
	case ViewConfirmDelete:
		m.confirm, cmd = m.confirm.Update(msg)
	case ViewActivity:
		m.activityView, cmd = m.activityView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// navigate moves to the route the guard allows for requested, entering or
// leaving the dashboard as needed.
func (m *Model) navigate(requested Route) tea.Cmd {
	res := Guard(requested, m.auth.IsAuthenticated())
	if res.From != "" {
		m.from = res.From
	}

	if m.route == RouteDashboard && res.Route != RouteDashboard {
		m.leaveDashboard()
	}
	entering := res.Route == RouteDashboard && m.route != RouteDashboard
	m.route = res.Route

	var cmd tea.Cmd
	switch res.Route {
	case RouteLogin:
		m.currentView = ViewLogin
		cmd = m.loginView.Start()
	case RouteRegister:
		m.currentView = ViewRegister
		cmd = m.registerView.Start()
	default:
		m.currentView = ViewDashboard
		if entering {
			m.from = ""
			cmd = m.enterDashboard()
		}
	}
	m.previousView = m.currentView
	return cmd
}

// syncRoute re-applies the guard after the session changed.
func (m *Model) syncRoute() tea.Cmd {
	authed := m.auth.IsAuthenticated()
	switch {
	case m.route.Guarded() && !authed:
		return m.navigate(m.route)
	case m.route != "" && !m.route.Guarded() && authed:
		return m.navigate(AfterLogin(m.from))
	}
	return nil
}

// enterDashboard starts the dashboard context and the refresher, and
// kicks off the first load.
func (m *Model) enterDashboard() tea.Cmd {
	m.dashCtx, m.dashCancel = context.WithCancel(context.Background())
	m.poller = appsync.New(m.goals, m.refreshInterval())
	start := m.poller.Start()
	m.poller.RefreshNow()
	return tea.Batch(
		m.goalList.SetGoals(nil, goals.LoadState{Kind: goals.StateLoading}),
		m.goalList.Init(),
		start,
	)
}

// leaveDashboard cancels outstanding dashboard work and empties the
// cache so responses that arrive later are discarded.
func (m *Model) leaveDashboard() {
	if m.dashCancel != nil {
		m.dashCancel()
		m.dashCancel = nil
	}
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}
	m.goals.Reset()
	m.goalForm.Close()
	m.timeForm.Close()
	m.statusErr = ""
	m.notice = ""
}

// shutdown releases the dashboard before quitting.
func (m *Model) shutdown() {
	if m.route == RouteDashboard {
		m.leaveDashboard()
	}
}

// expireSession signs out after the backend rejected the token.
func (m *Model) expireSession() tea.Cmd {
	if err := m.auth.Logout(); err != nil {
		log.Printf("clearing rejected session: %v", err)
	}
	cmd := m.syncRoute()
	m.statusErr = "Session expired. Please sign in again."
	return cmd
}

// syncList pushes the collection into the goal list.
func (m *Model) syncList() tea.Cmd {
	return m.goalList.SetGoals(m.goals.Goals(), m.goals.State())
}

func (m *Model) refresh() tea.Cmd {
	if m.poller == nil {
		return nil
	}
	m.poller.RefreshNow()
	return m.goalList.SetLoading()
}

func (m *Model) openDetail(id int64) tea.Cmd {
	g, ok := m.goals.Find(id)
	if !ok {
		return nil
	}
	m.detail.SetGoal(g)
	m.detail.SetLoading(true)
	m.currentView = ViewDetail
	return m.loadEntries(id)
}

func (m *Model) openCreateGoal() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewGoalForm
	return m.goalForm.StartCreate()
}

func (m *Model) openEditGoal(g model.Goal) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewGoalForm
	return m.goalForm.StartEdit(g)
}

func (m *Model) openLogTime(g model.Goal) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewTimeForm
	return m.timeForm.Start(g)
}

func (m *Model) askDelete(g model.Goal) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewConfirmDelete
	return m.confirm.Ask(g.ID, fmt.Sprintf("Delete goal \"%s\" and all logged time?", g.Title), "Delete")
}

func (m *Model) openActivity() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewActivity
	return m.activityView.Init()
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Init()
}

// applyConfig takes over saved settings. The refresher restarts when its
// interval changed; API changes need a restart.
func (m *Model) applyConfig(cfg model.AppConfig) tea.Cmd {
	prev := m.cfg
	m.cfg = cfg
	theme.Apply(cfg.Display.Theme)
	m.notice = "Settings saved"
	if cfg.API.BaseURL != prev.API.BaseURL || cfg.API.TimeoutSec != prev.API.TimeoutSec {
		m.notice = "Settings saved. Restart to use the new API settings."
	}

	if m.route != RouteDashboard || cfg.Display.RefreshIntervalSec == prev.Display.RefreshIntervalSec {
		return nil
	}
	if m.poller != nil {
		m.poller.Stop()
	}
	m.poller = appsync.New(m.goals, m.refreshInterval())
	return m.poller.Start()
}

func (m Model) refreshInterval() time.Duration {
	return time.Duration(m.cfg.Display.RefreshIntervalSec) * time.Second
}

func (m Model) requestTimeout() time.Duration {
	if m.cfg.API.TimeoutSec <= 0 {
		return model.DefaultTimeoutSec * time.Second
	}
	return time.Duration(m.cfg.API.TimeoutSec) * time.Second
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Goals Tracker", m.sessionStatus())
	content := m.renderContent()

	var statusBar string
	switch {
	case m.statusErr != "":
		statusBar = m.layout.RenderErrorBar(m.statusErr)
	case m.notice != "":
		statusBar = m.layout.RenderStatusBar(m.notice)
	default:
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewRegister:
		return m.registerView.View()
	case ViewDashboard:
		return m.goalList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewGoalForm:
		return m.centered(m.goalForm.View())
	case ViewTimeForm:
		return m.centered(m.timeForm.View())
	case ViewConfirmDelete:
		return m.centered(m.confirm.View())
	case ViewActivity:
		return m.activityView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewStarting:
		return m.centered(theme.HelpStyle.Render("Starting..."))
	default:
		return ""
	}
}

func (m Model) centered(s string) string {
	return lipgloss.Place(m.layout.ContentWidth(), m.layout.ContentHeight(), lipgloss.Center, lipgloss.Center, s)
}

// sessionStatus is the right side of the header.
func (m Model) sessionStatus() string {
	if !m.auth.IsAuthenticated() {
		return "signed out"
	}

	parts := []string{"● signed in"}
	if m.route == RouteDashboard {
		parts = append(parts, "total "+model.FormatMinutes(m.goals.TotalMinutes()))
		if m.poller != nil {
			st := m.poller.Status()
			switch {
			case st.State == appsync.SyncRunning:
				parts = append(parts, "syncing")
			case st.State == appsync.SyncError:
				parts = append(parts, "⚠ sync failed")
			case !st.LastSync.IsZero():
				parts = append(parts, "synced "+st.LastSync.Format("15:04"))
			}
		}
	}
	return strings.Join(parts, " · ")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewStarting:
		return "ctrl+c quit"
	case ViewLogin:
		return "enter submit | ctrl+r create account | ctrl+c quit"
	case ViewRegister:
		return "enter submit | ctrl+l sign in | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | t log time | d delete | j/k scroll"
	case ViewGoalForm, ViewTimeForm:
		return "enter submit | esc cancel"
	case ViewConfirmDelete:
		return "←/→ choose | enter confirm | esc cancel"
	case ViewActivity:
		return "esc back | r reload | j/k scroll"
	case ViewSettings:
		return "enter next | esc back"
	default:
		if m.goalList.Searching() {
			return "enter apply filter | esc clear"
		}
		return "q quit | ? help | n new | e edit | t log | d delete | / filter | r refresh | : command"
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	dashboard := m.route == RouteDashboard

	switch c.Name() {
	case "refresh", "sync", "r":
		if dashboard {
			return m.refresh()
		}
	case "new", "add":
		if dashboard {
			m.currentView = ViewDashboard
			return m.openCreateGoal()
		}
	case "activity":
		if dashboard {
			return m.openActivity()
		}
	case "settings", "config":
		return m.openSettings()
	case "goto", "go":
		return m.navigate(Resolve(c.Arg()))
	case "logout", "signout":
		return m.logout()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		m.shutdown()
		return tea.Quit
	default:
		m.statusErr = fmt.Sprintf("Unknown command %q", string(c))
	}
	return nil
}
