// Package session holds the operator's authenticated state against the backend.
//
// A Session is an immutable value snapshot. The Store is the only writer:
// it is set on successful login and cleared by logout or by the unauthorized
// handler, never mutated from anywhere else.
package session

import (
	"strings"
	"sync"
)

// Session is the bearer token and display name obtained from the backend login.
type Session struct {
	Token       string
	DisplayName string
}

// Valid reports whether the session carries a usable token.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Store is a concurrency-safe holder for the current session.
type Store struct {
	mu      sync.Mutex
	current Session
	active  bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set installs a new session. It is called only by the login flow.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
	s.active = sess.Valid()
}

// Current returns the active session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Session{}, false
	}
	return s.current, true
}

// Clear drops the session unconditionally. Idempotent; used by logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
	s.active = false
}

// Invalidate clears the session and reports whether this call did the clearing.
// Concurrent in-flight requests that all hit a 401 race to invalidate; exactly
// one caller observes true, so the redirect side effect fires once.
func (s *Store) Invalidate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.current = Session{}
	s.active = false
	return true
}
