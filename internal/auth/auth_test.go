package auth_test

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/api"
	"github.com/nhle/goal-tracker/internal/auth"
	"github.com/nhle/goal-tracker/internal/credential"
	"github.com/nhle/goal-tracker/internal/session"
	"github.com/nhle/goal-tracker/tests/testutil"
)

type fixture struct {
	backend *testutil.FakeBackend
	store   credential.Store
	sess    *session.Session
	client  *api.Client
	auth    *auth.Auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fb.AddUser("Ann", "ann@x.com", "pw123456")
	store := credential.NewKeyringStore(keyring.NewArrayKeyring(nil))
	sess := session.New(store)
	client := api.NewClient(fb.URL(), sess)
	return &fixture{
		backend: fb,
		store:   store,
		sess:    sess,
		client:  client,
		auth:    auth.New(client, sess),
	}
}

func TestLoginPersistsServerToken(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.auth.Login(context.Background(), "ann@x.com", "pw123456"))
	assert.True(t, f.auth.IsAuthenticated())

	persisted, err := f.store.Get()
	require.NoError(t, err)
	assert.NotEmpty(t, persisted)
	assert.Equal(t, persisted, f.auth.Token())
}

func TestLoginWrongPasswordStaysSignedOut(t *testing.T) {
	f := newFixture(t)

	err := f.auth.Login(context.Background(), "ann@x.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.False(t, f.auth.IsAuthenticated())

	persisted, err := f.store.Get()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestRegisterSignsIn(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.auth.Register(context.Background(), "Bob", "bob@x.com", "pw123456"))
	assert.True(t, f.auth.IsAuthenticated())
}

func TestRegisterConflictDoesNotSignIn(t *testing.T) {
	f := newFixture(t)

	err := f.auth.Register(context.Background(), "Ann", "ann@x.com", "pw123456")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.False(t, f.auth.IsAuthenticated())
}

func TestLogoutFromAnyState(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.auth.Logout(), "logout while signed out")
	assert.False(t, f.auth.IsAuthenticated())

	require.NoError(t, f.auth.Login(context.Background(), "ann@x.com", "pw123456"))
	require.NoError(t, f.auth.Logout())
	assert.False(t, f.auth.IsAuthenticated())

	persisted, err := f.store.Get()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestBearerHeaderFollowsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.auth.Login(ctx, "ann@x.com", "pw123456"))
	_, err := f.client.ListGoals(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+f.auth.Token(), f.backend.LastRequest().Authorization)

	require.NoError(t, f.auth.Logout())
	_, err = f.client.ListGoals(ctx)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Empty(t, f.backend.LastRequest().Authorization)
}

func TestRestoredSessionIsUsedByClient(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(f.backend.IssueToken("ann@x.com")))

	restored, err := session.Load(f.store)
	require.NoError(t, err)
	client := api.NewClient(f.backend.URL(), restored)

	_, err = client.ListGoals(context.Background())
	require.NoError(t, err)
}
