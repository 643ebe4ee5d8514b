package session

import (
	"context"
	"sync"
	"time"

	"github.com/punchamoorthee/ninjabank/internal/domain"
)

// MemoryStore holds sessions in process memory with a sliding expiry.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
}

func (m *MemoryStore) Get(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if sess, ok := m.sessions[token]; ok && token != "" {
		if now.Before(sess.ExpiresAt) {
			sess.ExpiresAt = now.Add(m.ttl)
			m.sessions[token] = sess
			return &sess, nil
		}
		delete(m.sessions, token)
	}

	sess := domain.Session{
		Token:     newToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.sessions[sess.Token] = sess
	return &sess, nil
}

func (m *MemoryStore) SetSenseiUser(_ context.Context, token, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok || !m.now().Before(sess.ExpiresAt) {
		return ErrUnknownSession
	}
	sess.SenseiUser = username
	m.sessions[token] = sess
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for token, sess := range m.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live and not yet swept sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
