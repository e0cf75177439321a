// Package auth signs users in and out. The resulting token lives in the
// session, which the API client reads on every request.
package auth

import (
	"context"
	"fmt"

	"github.com/nhle/goal-tracker/internal/session"
)

// Authenticator is the part of the backend client used for sign-in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, fullName, email, password string) error
}

// Auth ties the backend's auth endpoints to a session.
type Auth struct {
	client  Authenticator
	session *session.Session
}

// New returns an Auth bound to sess.
func New(client Authenticator, sess *session.Session) *Auth {
	return &Auth{client: client, session: sess}
}

// Login exchanges credentials for a token and stores it. On failure the
// session is unchanged.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.session.Set(token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Register creates an account and then signs in with the same
// credentials. Registration alone never establishes a session.
func (a *Auth) Register(ctx context.Context, fullName, email, password string) error {
	if err := a.client.Register(ctx, fullName, email, password); err != nil {
		return err
	}
	return a.Login(ctx, email, password)
}

// Logout forgets the token.
func (a *Auth) Logout() error {
	return a.session.Clear()
}

func (a *Auth) IsAuthenticated() bool {
	return a.session.Authenticated()
}

func (a *Auth) Token() string {
	return a.session.Token()
}

// Session exposes the underlying session.
func (a *Auth) Session() *session.Session {
	return a.session
}
