// Package session owns the bearer token of the signed-in user.
//
// A Session is the only place the token lives in memory. It writes through
// to a credential.Store on every change, and the API client reads the
// token from it when building each request, so the in-memory token, the
// persisted token and the outgoing Authorization header always agree.
package session

import (
	"fmt"
	"sync"

	"github.com/nhle/goal-tracker/internal/credential"
)

// Session holds the current token and keeps its persisted copy in sync.
type Session struct {
	mu        sync.RWMutex
	token     string
	store     credential.Store
	listeners []func(token string)
}

// New returns an empty session persisting to store.
func New(store credential.Store) *Session {
	return &Session{store: store}
}

// Load returns a session initialized from the token persisted in store.
func Load(store credential.Store) (*Session, error) {
	token, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return &Session{store: store, token: token}, nil
}

// Token returns the current bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set persists token and then makes it current. If persisting fails the
// previous token stays in effect.
func (s *Session) Set(token string) error {
	if token == "" {
		return s.Clear()
	}

	s.mu.Lock()
	if err := s.store.Set(token); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persisting session: %w", err)
	}
	s.token = token
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, token)
	return nil
}

// Clear removes the persisted token and signs the session out.
func (s *Session) Clear() error {
	s.mu.Lock()
	if err := s.store.Clear(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clearing session: %w", err)
	}
	changed := s.token != ""
	s.token = ""
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if changed {
		notify(listeners, "")
	}
	return nil
}

// Subscribe registers fn to be called after every token change. fn runs
// on the goroutine that changed the token, outside the session lock.
func (s *Session) Subscribe(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) snapshotListeners() []func(string) {
	out := make([]func(string), len(s.listeners))
	copy(out, s.listeners)
	return out
}

func notify(listeners []func(string), token string) {
	for _, fn := range listeners {
		fn(token)
	}
}
