// Package auth holds the signed-in user's credentials for the client and
// the bearer tokens the dev server issues.
package auth

import (
	"strings"
	"sync"

	"github.com/adi-253/roomline/internal/models"
)

// AnonymousNickname is shown for messages sent without a signed-in user.
const AnonymousNickname = "익명"

// Session is the in-memory auth state of one client. It is the credential
// provider the directory client and the socket transport query on every
// request and every (re)connect, so a token swapped by Login is picked up
// without rebuilding either of them.
type Session struct {
	mu    sync.RWMutex
	user  *models.UserInfo
	token string
}

// NewSession returns a session seeded with token. The token may be empty.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Login stores user and token, replacing any previous credentials.
func (s *Session) Login(user models.UserInfo, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.token = token
}

// Logout forgets the user and the token.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// Token returns the current bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, if any.
func (s *Session) User() (models.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.UserInfo{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a bearer token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Nickname returns the signed-in user's nickname, falling back to
// AnonymousNickname.
func (s *Session) Nickname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || strings.TrimSpace(s.user.Nickname) == "" {
		return AnonymousNickname
	}
	return s.user.Nickname
}
