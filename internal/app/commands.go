package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/goals"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/ui/detail"
	"github.com/nhle/goal-tracker/internal/ui/settings"
)

// loginResultMsg is sent when a sign-in attempt completes.
type loginResultMsg struct{ err error }

// registerResultMsg is sent when a registration (and the sign-in that
// follows it) completes.
type registerResultMsg struct{ err error }

// logoutResultMsg is sent after the session was cleared.
type logoutResultMsg struct{ err error }

// sessionChangedMsg is sent whenever the session token changes.
type sessionChangedMsg struct{}

// goalSavedMsg is sent after a create or edit was acknowledged.
type goalSavedMsg struct {
	goal model.Goal
	edit bool
	err  error
}

// timeLoggedResultMsg is sent after a time entry was acknowledged.
type timeLoggedResultMsg struct {
	goal model.Goal
	err  error
}

// goalDeletedMsg is sent after a delete completes.
type goalDeletedMsg struct {
	id    int64
	title string
	err   error
}

func (m *Model) login(email, password string) tea.Cmd {
	a := m.auth
	return func() tea.Msg {
		return loginResultMsg{err: a.Login(context.Background(), email, password)}
	}
}

func (m *Model) register(fullName, email, password string) tea.Cmd {
	a := m.auth
	return func() tea.Msg {
		return registerResultMsg{err: a.Register(context.Background(), fullName, email, password)}
	}
}

func (m *Model) logout() tea.Cmd {
	a := m.auth
	return func() tea.Msg {
		return logoutResultMsg{err: a.Logout()}
	}
}

// waitForSession blocks until the session reports a change.
func (m *Model) waitForSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		<-ch
		return sessionChangedMsg{}
	}
}

func (m *Model) createGoal(payload model.GoalCreate) tea.Cmd {
	col, ctx := m.goals, m.dashCtx
	return func() tea.Msg {
		g, err := col.Create(ctx, payload)
		return goalSavedMsg{goal: g, err: err}
	}
}

func (m *Model) updateGoal(id int64, payload model.GoalUpdate) tea.Cmd {
	col, ctx := m.goals, m.dashCtx
	return func() tea.Msg {
		g, err := col.Update(ctx, id, payload)
		return goalSavedMsg{goal: g, edit: true, err: err}
	}
}

func (m *Model) logTime(id int64, payload model.TimeEntryCreate) tea.Cmd {
	col, ctx := m.goals, m.dashCtx
	return func() tea.Msg {
		g, err := col.LogTime(ctx, id, payload)
		return timeLoggedResultMsg{goal: g, err: err}
	}
}

func (m *Model) deleteGoal(id int64) tea.Cmd {
	col, ctx := m.goals, m.dashCtx
	title := ""
	if g, ok := col.Find(id); ok {
		title = g.Title
	}
	return func() tea.Msg {
		return goalDeletedMsg{id: id, title: title, err: col.Remove(ctx, id)}
	}
}

// loadEntries fetches the time entries shown in the detail view.
func (m *Model) loadEntries(id int64) tea.Cmd {
	client, ctx := m.client, m.dashCtx
	return func() tea.Msg {
		entries, err := client.ListTimeEntries(ctx, id)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return detail.EntriesLoadedMsg{GoalID: id, Entries: entries, Err: err}
	}
}

// pingFunc checks a base URL with a throwaway client so the settings view
// can test a URL before it is saved.
func pingFunc(timeout time.Duration) settings.PingFunc {
	return func(ctx context.Context, baseURL string) (string, error) {
		return api.NewClient(baseURL, nil, api.WithTimeout(timeout)).Ping(ctx)
	}
}

func saveFunc(path string) settings.SaveFunc {
	return func(cfg model.AppConfig) error {
		if path == "" {
			return errors.New("no config file path")
		}
		return model.SaveConfig(path, &cfg)
	}
}

// mutationOutcome classifies the error of a dashboard operation.
type mutationOutcome int

const (
	outcomeOK mutationOutcome = iota
	outcomeStale
	outcomeExpired
	outcomeFailed
)

func classify(op string, err error) mutationOutcome {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, goals.ErrStale), errors.Is(err, context.Canceled):
		return outcomeStale
	case api.IsUnauthorized(err):
		log.Printf("%s: session rejected: %v", op, err)
		return outcomeExpired
	default:
		log.Printf("%s: %v", op, err)
		return outcomeFailed
	}
}

// errorText is the status bar rendition of a failed operation.
func errorText(op string, err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Status == 0 {
			return op + " failed: backend unreachable"
		}
		return fmt.Sprintf("%s failed: %s (%d)", op, reqErr.Message, reqErr.Status)
	}
	return op + " failed: " + err.Error()
}
