// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RememberToken is the client-held artifact that lets a session
// re-establish identity without a password. It is carried verbatim as a
// URL query parameter value and is not signed; the resume path re-verifies
// the embedded email against the stored row.
type RememberToken struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Encode serializes the token to its external JSON form.
func (t RememberToken) Encode() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", oops.Code("TOKEN_ENCODE_FAILED").Wrap(err)
	}
	return string(raw), nil
}

// DecodeRememberToken parses the external JSON form of a remember token.
// Any malformed or incomplete value is an error; callers on the resume
// path treat every error as "no token present".
func DecodeRememberToken(raw string) (RememberToken, error) {
	var t RememberToken
	if raw == "" {
		return t, oops.Code("TOKEN_EMPTY").Errorf("remember token is empty")
	}
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return RememberToken{}, oops.Code("TOKEN_MALFORMED").Wrap(err)
	}
	if t.UserID <= 0 || t.Email == "" {
		return RememberToken{}, oops.Code("TOKEN_MALFORMED").Errorf("remember token missing user_id or email")
	}
	return t, nil
}

// Session binds one client to at most one authenticated User.
//
// A session starts anonymous, becomes authenticated on successful login or
// remember-token resume, and returns to anonymous on logout or account
// deletion. Binding a new user fully replaces any prior state.
//
// Fields are guarded for concurrent access so a session can be touched by
// overlapping requests, but each client is expected to drive one operation
// at a time.
type Session struct {
	ID        ulid.ULID
	CreatedAt time.Time

	mu            sync.Mutex
	user          *User
	remember      string
	pendingDelete bool
}

// User returns the currently bound user, or nil for an anonymous session.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a user is bound to the session.
func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

// RememberToken returns the encoded remember token issued at login, or ""
// if persistence was not requested.
func (s *Session) RememberToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remember
}

// DeleteArmed reports whether account deletion has been armed and awaits
// confirmation.
func (s *Session) DeleteArmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingDelete
}

// bind replaces the session state with the given user. A previously armed
// deletion does not survive a re-bind.
func (s *Session) bind(user *User, remember string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.remember = remember
	s.pendingDelete = false
}

// clear returns the session to the anonymous state, discarding any
// remember token.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.remember = ""
	s.pendingDelete = false
}

// updateUser applies fn to a copy of the bound user and swaps the copy in.
// Snapshots handed out by User before the call are left untouched.
func (s *Session) updateUser(fn func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	copied := *s.user
	fn(&copied)
	s.user = &copied
}

func (s *Session) setPendingDelete(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDelete = v
}

// Manager tracks live sessions by ID. Each connected client gets its own
// Session; there is no process-wide current user.
type Manager struct {
	mu       sync.RWMutex
	sessions map[ulid.ULID]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[ulid.ULID]*Session)}
}

// Open creates and registers a new anonymous session.
func (m *Manager) Open() *Session {
	s := &Session{
		ID:        ulid.Make(),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given ID, if it exists.
func (m *Manager) Get(id ulid.ULID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close removes a session from the manager.
func (m *Manager) Close(id ulid.ULID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
