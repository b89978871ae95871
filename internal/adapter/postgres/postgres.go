// Package postgres implements the session store using PostgreSQL, for
// deployments that need sessions to survive a restart or be shared by
// more than one instance.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gatechat/internal/domain"

	_ "github.com/lib/pq"
)

// Store wraps a *sql.DB and implements domain.SessionStore.
type Store struct {
	sql *sql.DB
}

var _ domain.SessionStore = (*Store)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*Store, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	st := &Store{sql: s}
	if err := st.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, authenticated BOOLEAN NOT NULL, login_time TIMESTAMPTZ NOT NULL, last_activity TIMESTAMPTZ NOT NULL, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	}
	for _, stmt := range stmts {
		if _, err := s.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Get retrieves a session by token.
func (s *Store) Get(ctx context.Context, token string) (*domain.Session, error) {
	var sess domain.Session
	err := s.sql.QueryRowContext(ctx,
		"SELECT token, authenticated, login_time, last_activity, expires_at, created_at FROM sessions WHERE token = $1",
		token,
	).Scan(&sess.Token, &sess.Authenticated, &sess.LoginTime, &sess.LastActivity, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Put creates or replaces a session record.
func (s *Store) Put(ctx context.Context, sess *domain.Session) error {
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO sessions (token, authenticated, login_time, last_activity, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (token) DO UPDATE SET authenticated = $2, login_time = $3, last_activity = $4, expires_at = $5`,
		sess.Token, sess.Authenticated, sess.LoginTime, sess.LastActivity, sess.ExpiresAt, sess.CreatedAt,
	)
	return err
}

// Delete deletes a session by token.
func (s *Store) Delete(ctx context.Context, token string) error {
	_, err := s.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (s *Store) DeleteExpired(ctx context.Context) error {
	_, err := s.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", time.Now())
	return err
}
