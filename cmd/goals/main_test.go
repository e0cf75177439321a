package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nhle/goal-tracker/internal/credential"
	"github.com/nhle/goal-tracker/internal/model"
	"github.com/nhle/goal-tracker/internal/ui/login"
	"github.com/nhle/goal-tracker/internal/ui/register"
	"github.com/nhle/goal-tracker/tests/testutil"
)

const (
	email    = "ann@x.com"
	password = "pw123456"
)

type cliFixture struct {
	backend *testutil.FakeBackend
	creds   credential.Store
	secret  string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fb.AddUser("Ann", email, password)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("api:\n  base_url: %s\nstorage:\n  activity_db: %s\n",
		fb.URL(), filepath.Join(dir, "activity.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	t.Setenv("GOALS_CONFIG", cfgPath)

	return &cliFixture{
		backend: fb,
		creds:   credential.NewKeyringStore(keyring.NewArrayKeyring(nil)),
		secret:  password,
	}
}

func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	e := &env{
		credentials: f.creds,
		readSecret: func(_ io.Reader, _ io.Writer, _ string) (string, error) {
			return f.secret, nil
		},
	}
	cmd := newRootCmd(e)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (f *cliFixture) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, f.creds.Set(f.backend.IssueToken(email)))
}

func TestLoginStoresToken(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "", "login", "--email", email)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ann@x.com")

	token, err := f.creds.Get()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	out, err = f.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in")
}

func TestLoginPromptsForEmail(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, email+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Signed in")
}

func TestLoginWrongPassword(t *testing.T) {
	f := newCLIFixture(t)
	f.secret = "wrong"

	_, err := f.run(t, "", "login", "--email", email)
	require.EqualError(t, err, login.FailureMessage)

	token, err := f.creds.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRegister(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "", "register", "--name", "Bob", "--email", "bob@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created")

	_, err = f.run(t, "", "register", "--name", "Ann", "--email", email)
	require.EqualError(t, err, register.FailureMessage)
}

func TestGuardedCommandsRequireLogin(t *testing.T) {
	f := newCLIFixture(t)

	for _, args := range [][]string{
		{"list"},
		{"add", "Read"},
		{"log", "1", "30"},
		{"rm", "1", "--yes"},
	} {
		_, err := f.run(t, "", args...)
		assert.ErrorIs(t, err, errNotLoggedIn, "goals %s", strings.Join(args, " "))
	}
	assert.Empty(t, f.backend.Requests(), "no request leaves without a session")
}

func TestGoalLifecycle(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t)

	out, err := f.run(t, "", "add", "Read", "--description", "20 books")
	require.NoError(t, err)
	assert.Contains(t, out, `"Read"`)
	f.backend.SeedGoal(email, "Run")

	out, err = f.run(t, "", "list", "--output", "json")
	require.NoError(t, err)
	var listed []model.Goal
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Run", listed[0].Title)
	readID := listed[1].ID

	out, err = f.run(t, "", "log", fmt.Sprint(readID), "30", "--note", "ch 1")
	require.NoError(t, err)
	assert.Contains(t, out, "30 min total")

	out, err = f.run(t, "", "edit", fmt.Sprint(readID), "--title", "Read more")
	require.NoError(t, err)
	assert.Contains(t, out, `"Read more"`)

	out, err = f.run(t, "", "entries", fmt.Sprint(readID))
	require.NoError(t, err)
	assert.Contains(t, out, "ch 1")

	out, err = f.run(t, "", "rm", fmt.Sprint(readID), "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted goal")
	assert.Equal(t, 1, f.backend.GoalCount())

	out, err = f.run(t, "", "activity", "--limit", "0", "-o", "json")
	require.NoError(t, err)
	var acts []model.Activity
	require.NoError(t, json.Unmarshal([]byte(out), &acts))
	kinds := make([]model.ActivityKind, 0, len(acts))
	for _, a := range acts {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []model.ActivityKind{
		model.ActivityGoalDeleted,
		model.ActivityGoalUpdated,
		model.ActivityTimeLogged,
		model.ActivityGoalCreated,
	}, kinds)
}

func TestListYAMLAndEmptyTable(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t)

	out, err := f.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Start by creating your first goal.")

	f.backend.SeedGoal(email, "Read", 90)
	out, err = f.run(t, "", "list", "-o", "yaml")
	require.NoError(t, err)
	var listed []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Read", listed[0]["title"])
	assert.Equal(t, 90, listed[0]["total_minutes"])

	out, err = f.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1h 30m")

	_, err = f.run(t, "", "list", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestRmAsksForConfirmation(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t)
	g := f.backend.SeedGoal(email, "Read")

	out, err := f.run(t, "n\n", "rm", fmt.Sprint(g.ID))
	require.NoError(t, err)
	assert.Contains(t, out, `Delete goal "Read" and all logged time?`)
	assert.Contains(t, out, "Cancelled")
	assert.Equal(t, 1, f.backend.GoalCount())

	_, err = f.run(t, "y\n", "rm", fmt.Sprint(g.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, f.backend.GoalCount())
}

func TestConfirmWithoutTerminal(t *testing.T) {
	cases := map[string]bool{
		"y\n":    true,
		"YES\n":  true,
		"yes":    true,
		"n\n":    false,
		"\n":     false,
		"sure\n": false,
	}
	for input, want := range cases {
		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(&out)

		got, err := confirm(cmd, "Delete goal?")
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
		assert.Equal(t, "Delete goal? [y/N] ", out.String())
	}

	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(io.Discard)
	_, err := confirm(cmd, "Delete goal?")
	assert.Error(t, err, "closed input is not a refusal")
}

func TestLogRejectsBadMinutes(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t)

	_, err := f.run(t, "", "log", "1", "0")
	assert.EqualError(t, err, "minutes must be greater than 0")
	_, err = f.run(t, "", "log", "1", "ten")
	assert.EqualError(t, err, "minutes must be a whole number")
}

func TestRejectedTokenIsCleared(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.creds.Set("stale-token"))

	_, err := f.run(t, "", "list")
	require.EqualError(t, err, "session expired: run 'goals login'")

	token, err := f.creds.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}
