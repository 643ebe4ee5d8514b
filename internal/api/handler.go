package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/ninjabank/internal/logging"
	"github.com/punchamoorthee/ninjabank/internal/models"
	"github.com/punchamoorthee/ninjabank/internal/service"
	"github.com/punchamoorthee/ninjabank/internal/session"
)

// Metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ninjabank_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ninjabank_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})
)

const genericFailure = "Something went wrong."

//go:embed templates/*.html
var templateFS embed.FS

var pages = parsePages("login", "coins", "message", "sensei_login", "add_coins", "success", "error")

func parsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// view is what every page template receives.
type view struct {
	CSRFField template.HTML
	Page      any
}

type Handler struct {
	ledger   *service.LedgerService
	sessions *session.Manager
	logger   logging.Logger
}

func NewHandler(ledger *service.LedgerService, sessions *session.Manager, logger logging.Logger) *Handler {
	return &Handler{ledger: ledger, sessions: sessions, logger: logger}
}

// render writes page with the given status. The page is executed into a
// buffer first so a template failure never leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, code int, name string, page any) {
	var buf bytes.Buffer
	err := pages[name].ExecuteTemplate(&buf, "layout.html", view{
		CSRFField: csrf.TemplateField(r),
		Page:      page,
	})
	if err != nil {
		h.logger.Error("render failed", "template", name, "error", err.Error())
		http.Error(w, genericFailure, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderMessage(w http.ResponseWriter, r *http.Request, code int, page models.MessagePage) {
	h.render(w, r, code, "message", page)
}

// internalError logs the real error and answers with the generic failure page.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, retry *models.MessagePage) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	page := models.MessagePage{Title: "Error", Message: genericFailure}
	if retry != nil {
		page = *retry
	}
	h.render(w, r, http.StatusInternalServerError, "error", page)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument records request count, latency and an access log line for
// every routed request.
func (h *Handler) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))

		next.ServeHTTP(rec, r)

		timer.ObserveDuration()
		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		h.logger.Info("request",
			"method", r.Method,
			"path", endpoint,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
