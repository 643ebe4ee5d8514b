package api

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/punchamoorthee/ninjabank/internal/session"
)

const csrfFieldName = "csrf_token"

type RouterConfig struct {
	// CSRFKey enables form CSRF protection when non-empty (32 bytes).
	CSRFKey []byte
	// Secure marks cookies Secure and treats requests as HTTPS.
	Secure bool
}

// NewRouter mounts the page routes behind the session middleware, plus
// /metrics and /health.
func NewRouter(h *Handler, sessions *session.Manager, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.Instrument)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheckHandler).Methods(http.MethodGet)

	pages := r.PathPrefix("/").Subrouter()
	pages.Use(sessions.Middleware)
	if len(cfg.CSRFKey) > 0 {
		if !cfg.Secure {
			pages.Use(plaintextHTTP)
		}
		pages.Use(csrf.Protect(cfg.CSRFKey,
			csrf.Secure(cfg.Secure),
			csrf.Path("/"),
			csrf.FieldName(csrfFieldName),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(h.csrfFailedHandler)),
		))
	}

	pages.HandleFunc("/", h.NinjaLoginHandler).Methods(http.MethodGet)
	pages.HandleFunc("/coins", h.CoinsHandler).Methods(http.MethodPost)
	pages.HandleFunc("/sensei-login", h.SenseiLoginFormHandler).Methods(http.MethodGet)
	pages.HandleFunc("/sensei-login", h.SenseiLoginHandler).Methods(http.MethodPost)
	pages.HandleFunc("/add-coins", h.AddCoinsFormHandler).Methods(http.MethodGet)
	pages.HandleFunc("/add-coins", h.AddCoinsHandler).Methods(http.MethodPost)
	pages.HandleFunc("/sensei-logout", h.SenseiLogoutHandler).Methods(http.MethodGet)

	return r
}

// plaintextHTTP tells the CSRF middleware the request arrived over plain
// HTTP so it skips the HTTPS-only Referer check in development.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
