package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for each request.
// *session.Session implements it.
type TokenSource interface {
	Token() string
}

// Client is a thin HTTP client for the Goals Tracker REST API.
// It attaches the current session token as a Bearer header and handles
// JSON and form encoding. Every call makes exactly one attempt.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new API client. The baseURL is the API root
// (e.g., http://localhost:8000 or https://example.com/api).
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one call to the backend.
type request struct {
	method string
	path   string
	json   any
	form   url.Values
	auth   bool
}

// response is a completed exchange with a non-error status.
type response struct {
	status int
	body   []byte
}

// do builds and sends the request, attaching the bearer token when
// req.auth is set and a token is available. Transport failures and non-2xx
// statuses become *RequestError.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	var bodyReader io.Reader
	var contentType string
	switch {
	case req.form != nil:
		bodyReader = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.json != nil:
		data, err := json.Marshal(req.json)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, req.method, c.baseURL+req.path, bodyReader,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{
			Method:  req.method,
			Path:    req.path,
			Message: err.Error(),
			Err:     err,
		}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, &RequestError{
			Method:  req.method,
			Path:    req.path,
			Status:  resp.StatusCode,
			Message: "reading response body: " + readErr.Error(),
			Err:     readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Method:  req.method,
			Path:    req.path,
			Status:  resp.StatusCode,
			Message: detailMessage(resp.StatusCode, respBody),
		}
	}

	return &response{status: resp.StatusCode, body: respBody}, nil
}

// decode unmarshals a successful response body into result.
func (c *Client) decode(req request, resp *response, result any) error {
	if result == nil || resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w",
			req.method, req.path, err,
		)
	}
	return nil
}

// call performs the request and decodes the JSON result.
func (c *Client) call(ctx context.Context, req request, result any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return c.decode(req, resp, result)
}

// detailMessage extracts a human readable message from a FastAPI error
// body. detail is either a string or a list of validation errors.
func detailMessage(status int, body []byte) string {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Detail != nil {
		switch d := er.Detail.(type) {
		case string:
			return d
		case []any:
			var msgs []string
			for _, item := range d {
				if m, ok := item.(map[string]any); ok {
					if msg, ok := m["msg"].(string); ok {
						msgs = append(msgs, msg)
					}
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}
