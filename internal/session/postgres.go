package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/punchamoorthee/ninjabank/internal/domain"
)

// Executor is the part of pgxpool.Pool the store needs; pgxmock pools
// satisfy it in tests.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the sessions table so that logins
// survive restarts and are shared between instances.
type PostgresStore struct {
	db  Executor
	ttl time.Duration
	now func() time.Time
}

func NewPostgresStore(db Executor, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	now := s.now()

	if token != "" {
		sess := domain.Session{Token: token}
		err := s.db.QueryRow(ctx,
			"SELECT COALESCE(sensei_user, ''), created_at FROM sessions WHERE token = $1 AND expires_at > $2",
			token, now,
		).Scan(&sess.SenseiUser, &sess.CreatedAt)

		switch {
		case err == nil:
			sess.ExpiresAt = now.Add(s.ttl)
			if _, err := s.db.Exec(ctx, "UPDATE sessions SET expires_at = $1 WHERE token = $2", sess.ExpiresAt, token); err != nil {
				return nil, fmt.Errorf("session touch failed: %w", err)
			}
			return &sess, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("session lookup failed: %w", err)
		}
	}

	sess := domain.Session{
		Token:     newToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO sessions (token, sensei_user, created_at, expires_at) VALUES ($1, NULL, $2, $3)",
		sess.Token, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("session insert failed: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) SetSenseiUser(ctx context.Context, token, username string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE sessions SET sensei_user = $1 WHERE token = $2 AND expires_at > $3",
		username, token, s.now(),
	)
	if err != nil {
		return fmt.Errorf("session update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownSession
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE token = $1", token); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Sweep(ctx context.Context) (int, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1", s.now())
	if err != nil {
		return 0, fmt.Errorf("session sweep failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
