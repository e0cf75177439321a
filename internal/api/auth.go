package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nhle/goal-tracker/internal/model"
)

// Login exchanges credentials for a bearer token via POST /auth/login.
// The backend expects an OAuth2 password form where username is the email.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req := request{method: http.MethodPost, path: "/auth/login", form: form}
	var token model.Token
	if err := c.call(ctx, req, &token); err != nil {
		return "", asAuthError("login", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("login: response carried no access token")
	}
	return token.AccessToken, nil
}

// Register creates an account via POST /auth/register. It does not sign
// the user in.
func (c *Client) Register(ctx context.Context, fullName, email, password string) error {
	req := request{
		method: http.MethodPost,
		path:   "/auth/register",
		json: model.RegisterRequest{
			FullName: fullName,
			Email:    email,
			Password: password,
		},
	}
	var user model.User
	if err := c.call(ctx, req, &user); err != nil {
		return asAuthError("register", err)
	}
	return nil
}

// Ping calls the API root and returns the backend's status message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	req := request{method: http.MethodGet, path: "/"}
	if err := c.call(ctx, req, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// asAuthError converts an HTTP rejection into an AuthError. Transport
// failures (no status) are left as RequestError.
func asAuthError(op string, err error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Status != 0 {
		return &AuthError{Op: op, Status: reqErr.Status, Message: reqErr.Message}
	}
	return err
}
