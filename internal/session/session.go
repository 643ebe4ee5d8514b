// Package session keeps the per-client login state: which sensei, if any,
// authenticated on the client's cookie.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/punchamoorthee/ninjabank/internal/domain"
)

var ErrUnknownSession = errors.New("session not found or expired")

// Store persists sessions by token.
//
// Get never fails on an unseen, empty or expired token: it starts a fresh
// unauthenticated session under a newly minted token, which the caller must
// hand back to the client. Clear destroys the session so that a later Get
// with the same token starts over.
type Store interface {
	Get(ctx context.Context, token string) (*domain.Session, error)
	SetSenseiUser(ctx context.Context, token, username string) error
	Clear(ctx context.Context, token string) error
	// Sweep drops expired sessions and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
}

func newToken() string {
	return uuid.NewString()
}
