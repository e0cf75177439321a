package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/bootstrap"
	"github.com/nhle/goal-tracker/internal/credential"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/store"
	"github.com/nhle/goal-tracker/internal/ui/login"
	"github.com/nhle/goal-tracker/internal/ui/register"
	"github.com/nhle/goal-tracker/internal/ui/timeform"
)

var errNotLoggedIn = errors.New("not logged in: run 'goals login'")

func main() {
	if err := newRootCmd(&env{}).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env carries the global flags and the hooks tests replace.
type env struct {
	configPath string
	apiURL     string

	// credentials replaces the system keyring when set.
	credentials credential.Store

	// readSecret reads a password without echo.
	readSecret func(in io.Reader, out io.Writer, prompt string) (string, error)
}

func (e *env) load() (*bootstrap.App, error) {
	return bootstrap.New(bootstrap.Options{
		ConfigPath:  e.configPath,
		BaseURL:     e.apiURL,
		Credentials: e.credentials,
	})
}

// loadSignedIn loads the app and fails unless a session exists.
func (e *env) loadSignedIn() (*bootstrap.App, error) {
	a, err := e.load()
	if err != nil {
		return nil, err
	}
	if !a.Auth.IsAuthenticated() {
		_ = a.Close()
		return nil, errNotLoggedIn
	}
	return a, nil
}

func (e *env) secret(cmd *cobra.Command, prompt string) (string, error) {
	read := e.readSecret
	if read == nil {
		read = readTerminalSecret
	}
	return read(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "goals",
		Short:         "Goals Tracker terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(e)
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default ~/.config/goal-tracker/config.yaml)")
	root.PersistentFlags().StringVar(&e.apiURL, "api", "", "API base URL, overrides api.base_url")

	root.AddCommand(newTUICmd(e))
	root.AddCommand(newLoginCmd(e))
	root.AddCommand(newRegisterCmd(e))
	root.AddCommand(newLogoutCmd(e))
	root.AddCommand(newWhoamiCmd(e))
	root.AddCommand(newListCmd(e))
	root.AddCommand(newAddCmd(e))
	root.AddCommand(newEditCmd(e))
	root.AddCommand(newRmCmd(e))
	root.AddCommand(newLogCmd(e))
	root.AddCommand(newEntriesCmd(e))
	root.AddCommand(newActivityCmd(e))
	return root
}

func runTUI(e *env) error {
	a, err := e.load()
	if err != nil {
		return err
	}
	defer a.Close()
	return bootstrap.RunTUI(a)
}

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(e)
		},
	}
}

func newLoginCmd(e *env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.load()
			if err != nil {
				return err
			}
			defer a.Close()

			if email == "" {
				if email, err = prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			password, err := e.secret(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			if err := a.Auth.Login(cmd.Context(), email, password); err != nil {
				if api.IsAuthError(err) {
					return errors.New(login.FailureMessage)
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newRegisterCmd(e *env) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
				return errors.New("--name and --email are required")
			}
			a, err := e.load()
			if err != nil {
				return err
			}
			defer a.Close()

			password, err := e.secret(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			if err := a.Auth.Register(cmd.Context(), name, email, password); err != nil {
				if api.IsAuthError(err) {
					return errors.New(register.FailureMessage)
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.load()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Auth.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.load()
			if err != nil {
				return err
			}
			defer a.Close()

			state := "signed out"
			if a.Auth.IsAuthenticated() {
				state = "signed in"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", state, a.Client.BaseURL())
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.loadSignedIn()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Goals.Refresh(cmd.Context()); err != nil {
				return sessionError(a, err)
			}
			return writeGoals(cmd.OutOrStdout(), output, a.Goals.Goals())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json|yaml")
	return cmd
}

func newAddCmd(e *env) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return errors.New("title is required")
			}
			a, err := e.loadSignedIn()
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.Goals.Create(cmd.Context(), model.GoalCreate{
				Title:       title,
				Description: model.OptionalString(description),
			})
			if err != nil {
				return sessionError(a, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created goal %d %q\n", g.ID, g.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a goal's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var payload model.GoalUpdate
			if cmd.Flags().Changed("title") {
				t := strings.TrimSpace(title)
				if t == "" {
					return errors.New("title cannot be blank")
				}
				payload.Title = &t
			}
			if cmd.Flags().Changed("description") {
				d := strings.TrimSpace(description)
				payload.Description = &d
			}
			if payload.Title == nil && payload.Description == nil {
				return errors.New("nothing to change: pass --title or --description")
			}

			a, err := e.loadSignedIn()
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.Goals.Update(cmd.Context(), id, payload)
			if err != nil {
				return sessionError(a, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated goal %d %q\n", g.ID, g.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func newRmCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal and all its logged time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := e.loadSignedIn()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Goals.Refresh(cmd.Context()); err != nil {
				return sessionError(a, err)
			}
			g, ok := a.Goals.Find(id)
			if !ok {
				return fmt.Errorf("goal %d not found", id)
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete goal \"%s\" and all logged time?", g.Title))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := a.Goals.Remove(cmd.Context(), id); err != nil {
				return sessionError(a, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %d %q\n", g.ID, g.Title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newLogCmd(e *env) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "log <id> <minutes>",
		Short: "Log minutes against a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			minutes, err := timeform.ParseMinutes(args[1])
			if err != nil {
				return err
			}
			a, err := e.loadSignedIn()
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.Goals.LogTime(cmd.Context(), id, model.TimeEntryCreate{
				Minutes: minutes,
				Note:    model.OptionalString(note),
			})
			if err != nil {
				return sessionError(a, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %q, %s total\n",
				model.FormatMinutes(minutes), g.Title, model.FormatMinutes(g.TotalMinutes))
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func newEntriesCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "entries <id>",
		Short: "List the time entries of a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := e.loadSignedIn()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Client.ListTimeEntries(cmd.Context(), id)
			if err != nil {
				return sessionError(a, err)
			}
			return writeEntries(cmd.OutOrStdout(), output, entries)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json|yaml")
	return cmd
}

func newActivityCmd(e *env) *cobra.Command {
	var limit int
	var goalID int64
	var output string

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the local activity journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.load()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Journal == nil {
				return errors.New("activity journal unavailable")
			}

			filter := store.ActivityFilter{Limit: limit}
			if goalID > 0 {
				filter.GoalID = &goalID
			}
			entries, err := a.Journal.ListActivity(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return writeActivity(cmd.OutOrStdout(), output, entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries, 0 for all")
	cmd.Flags().Int64Var(&goalID, "goal", 0, "only entries for this goal id")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json|yaml")

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete old journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			a, err := e.load()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Journal == nil {
				return errors.New("activity journal unavailable")
			}

			n, err := a.Journal.PruneActivity(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "age of the entries to delete")
	cmd.AddCommand(prune)
	return cmd
}

// sessionError clears a session the backend rejected so the next command
// asks the user to sign in again.
func sessionError(a *bootstrap.App, err error) error {
	if api.IsUnauthorized(err) {
		if clearErr := a.Auth.Logout(); clearErr != nil {
			return fmt.Errorf("session rejected, clearing it failed: %w", clearErr)
		}
		return errors.New("session expired: run 'goals login'")
	}
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid goal id %q", s)
	}
	return id, nil
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question, with a huh prompt when stdin is a
// terminal and a plain [y/N] line otherwise.
func confirm(cmd *cobra.Command, title string) (bool, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var yes bool
		err := huh.NewConfirm().
			Title(title).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&yes).
			Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return yes, err
	}

	answer, err := prompt(cmd, title+" [y/N] ")
	if err != nil {
		return false, err
	}
	ans := strings.ToLower(answer)
	return ans == "y" || ans == "yes", nil
}

// readTerminalSecret reads without echo when stdin is a terminal and falls
// back to a plain line otherwise.
func readTerminalSecret(in io.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
