// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"gatechat/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided password was incorrect.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// AuthService handles the shared-password gate and session lifecycle.
// A single configured secret admits every user; sessions slide their
// expiry forward by ttl on each authorized request.
type AuthService struct {
	sessions     domain.SessionStore
	password     string
	passwordHash string
	ttl          time.Duration
}

// NewAuthService creates a new authentication service. Either password or
// passwordHash (a bcrypt digest) may be set; when both are present the
// hash wins.
func NewAuthService(sessions domain.SessionStore, password, passwordHash string, ttl time.Duration) *AuthService {
	return &AuthService{
		sessions:     sessions,
		password:     password,
		passwordHash: passwordHash,
		ttl:          ttl,
	}
}

// Login checks the shared password and creates an authenticated session.
// The caller learns nothing beyond match or no match.
func (s *AuthService) Login(ctx context.Context, password string) (*domain.Session, error) {
	if !s.checkPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		Token:         token,
		Authenticated: true,
		LoginTime:     now,
		LastActivity:  now,
		ExpiresAt:     now.Add(s.ttl),
		CreatedAt:     now,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Logout destroys a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession authorizes a request on the given token. On success it
// refreshes the session's activity stamp and sliding expiry; on expiry it
// destroys the record so the stale token can never authorize again.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Authenticated {
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	if session.Expired(now) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	session.LastActivity = now
	session.ExpiresAt = now.Add(s.ttl)
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return session, nil
}

// Peek reports the session for a token without mutating anything. It
// returns (nil, nil) for an absent, unauthenticated, or expired session.
func (s *AuthService) Peek(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Authenticated || session.Expired(time.Now()) {
		return nil, nil
	}
	return session, nil
}

// DeleteExpired removes expired session records from the store.
func (s *AuthService) DeleteExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) checkPassword(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) == 1
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
