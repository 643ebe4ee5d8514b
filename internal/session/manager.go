package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/punchamoorthee/ninjabank/internal/domain"
	"github.com/punchamoorthee/ninjabank/internal/logging"
)

const CookieName = "nb_session"

type contextKey struct{}

// Manager carries session tokens between the Store and the client cookie.
type Manager struct {
	store  Store
	secure bool
	logger logging.Logger
}

func NewManager(store Store, secure bool, logger logging.Logger) *Manager {
	return &Manager{store: store, secure: secure, logger: logger}
}

// Middleware loads the caller's session into the request context and
// issues a cookie whenever the session token changed.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(CookieName); err == nil {
			token = c.Value
		}

		sess, err := m.store.Get(r.Context(), token)
		if err != nil {
			m.logger.Error("session load failed", "path", r.URL.Path, "error", err.Error())
			http.Error(w, "Something went wrong.", http.StatusInternalServerError)
			return
		}

		if sess.Token != token {
			m.setCookie(w, sess.Token, 0)
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Login marks the request's session as authenticated for username.
func (m *Manager) Login(r *http.Request, username string) error {
	sess := FromContext(r.Context())
	if sess == nil {
		return ErrUnknownSession
	}
	if err := m.store.SetSenseiUser(r.Context(), sess.Token, username); err != nil {
		return fmt.Errorf("login %s: %w", username, err)
	}
	sess.SenseiUser = username
	return nil
}

// Logout destroys the request's session and expires the cookie. It is a
// no-op for requests that carry no session.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := FromContext(r.Context())
	if sess == nil {
		return nil
	}
	if err := m.store.Clear(r.Context(), sess.Token); err != nil {
		return err
	}
	sess.SenseiUser = ""
	m.setCookie(w, "", -1)
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session loaded by Middleware, or nil.
func FromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(contextKey{}).(*domain.Session)
	return sess
}
