// Package bootstrap wires configuration, session, backend client, goal
// cache and activity journal into one App for the CLI and the TUI.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/app"
	"github.com/nhle/goal-tracker/internal/auth"
	"github.com/nhle/goal-tracker/internal/credential"
	"github.com/nhle/goal-tracker/internal/goals"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/session"
	"github.com/nhle/goal-tracker/internal/store"
	"github.com/nhle/goal-tracker/internal/theme"
)

// Options selects where App gets its configuration and credentials.
type Options struct {
	// ConfigPath is the YAML config file; empty means the default path.
	ConfigPath string

	// BaseURL overrides api.base_url when set.
	BaseURL string

	// Credentials overrides the system keyring.
	Credentials credential.Store
}

// App holds the wired collaborators.
type App struct {
	Config     model.AppConfig
	ConfigPath string
	Session    *session.Session
	Client     *api.Client
	Auth       *auth.Auth
	Goals      *goals.Collection

	// Journal is nil when the activity database could not be opened.
	Journal *store.SQLiteStore
}

// New loads the configuration and wires the application.
func New(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv("GOALS_CONFIG")
	}
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	creds := opts.Credentials
	if creds == nil {
		creds, err = credential.Open(credential.Options{
			Backends: cfg.Session.Backends,
			FileDir:  cfg.Session.FileDir,
		})
		if err != nil {
			return nil, err
		}
	}

	sess, err := session.Load(creds)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, sess,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second))

	a := &App{
		Config:     *cfg,
		ConfigPath: path,
		Session:    sess,
		Client:     client,
		Auth:       auth.New(client, sess),
	}

	var opt []goals.Option
	if j, err := openJournal(cfg.Storage.ActivityDB); err != nil {
		log.Printf("activity journal disabled: %v", err)
	} else {
		a.Journal = j
		opt = append(opt, goals.WithRecorder(j))
		scopeJournal(sess, j)
	}
	a.Goals = goals.NewCollection(client, opt...)

	return a, nil
}

// scopeJournal ties the journal to the signed-in account: it is emptied
// whenever a session ends, whether by sign-out, expiry, or a sign-in that
// replaces it.
func scopeJournal(sess *session.Session, j *store.SQLiteStore) {
	var mu sync.Mutex
	current := sess.Token()
	sess.Subscribe(func(token string) {
		mu.Lock()
		ended := current != "" && token != current
		current = token
		mu.Unlock()
		if !ended {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if n, err := j.ClearActivity(ctx); err != nil {
			log.Printf("clearing activity journal: %v", err)
		} else {
			log.Printf("session ended, cleared %d journal entries", n)
		}
	})
}

func openJournal(path string) (*store.SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("no activity database configured")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return store.NewSQLiteStore(path)
}

// Close releases the journal.
func (a *App) Close() error {
	if a.Journal == nil {
		return nil
	}
	return a.Journal.Close()
}

// RunTUI runs the terminal UI until the user quits.
func RunTUI(a *App) error {
	if a.Config.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(a.Config.Log.File), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := tea.LogToFile(a.Config.Log.File, "goals")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	} else {
		// The TUI owns the terminal.
		log.SetOutput(io.Discard)
	}

	theme.Apply(a.Config.Display.Theme)

	deps := app.Deps{
		Auth:       a.Auth,
		Client:     a.Client,
		Goals:      a.Goals,
		Config:     a.Config,
		ConfigPath: a.ConfigPath,
	}
	if a.Journal != nil {
		deps.Journal = a.Journal
	}

	program := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
