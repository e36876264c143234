package authsdk

import (
	"context"
	"sync"
	"time"
)

// expiryBuffer is how long before the real expiry a Session reports itself
// expired.
const expiryBuffer = 30 * time.Second

// tokenLifetime matches the server's token TTL. Login replies do not carry
// it, so the session assumes the default.
const tokenLifetime = 24 * time.Hour

// Session holds a token obtained by logging in. Tokens cannot be refreshed,
// once Expired reports true the caller must log in again.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	userID    int64
	username  string
	expiresAt time.Time
}

// newSession creates a new authenticated session from a login response.
func newSession(client *SDKClient, login *LoginResponse) *Session {
	return &Session{
		client:    client,
		token:     login.Token,
		userID:    login.UserID,
		username:  login.Username,
		expiresAt: time.Now().Add(tokenLifetime - expiryBuffer),
	}
}

// NewSessionFromToken wraps a token obtained elsewhere.
func (c *SDKClient) NewSessionFromToken(token string, userID int64, username string) *Session {
	return newSession(c, &LoginResponse{Token: token, UserID: userID, Username: username})
}

// Token returns the bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the id of the logged in user.
func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Username returns the name of the logged in user.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Expired reports whether the token is at or near the end of its life.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !time.Now().Before(s.expiresAt)
}

// Verify checks the session token against the auth service.
func (s *Session) Verify(ctx context.Context) (*VerifyResponse, error) {
	return s.client.Verify(ctx, s.Token())
}

// Profile fetches the logged in user's account.
func (s *Session) Profile(ctx context.Context) (*ProfileResponse, error) {
	return s.client.Profile(ctx, s.Token())
}
