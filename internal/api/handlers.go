package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/punchamoorthee/ninjabank/internal/domain"
	"github.com/punchamoorthee/ninjabank/internal/models"
	"github.com/punchamoorthee/ninjabank/internal/service"
	"github.com/punchamoorthee/ninjabank/internal/session"
)

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) NinjaLoginHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", nil)
}

func (h *Handler) CoinsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.ledger.LookupCoins(r.Context(), r.PostFormValue("ninjaCode"))
	switch {
	case errors.Is(err, domain.ErrNinjaNotFound):
		h.renderMessage(w, r, http.StatusOK, models.MessagePage{
			Title:    "Ninja not found",
			Message:  "Ninja not found.",
			LinkHref: "/",
			LinkText: "Go back",
		})
	case err != nil:
		h.internalError(w, r, err, nil)
	default:
		h.render(w, r, http.StatusOK, "coins", page)
	}
}

func (h *Handler) SenseiLoginFormHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "sensei_login", nil)
}

func (h *Handler) SenseiLoginHandler(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")

	res, err := h.ledger.AuthenticateSensei(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		h.internalError(w, r, err, &models.MessagePage{
			Title:   "Error",
			Message: "Error during login",
		})
		return
	}

	switch res {
	case service.LoginOK:
		if err := h.sessions.Login(r, username); err != nil {
			h.internalError(w, r, err, nil)
			return
		}
		redirect(w, r, "/add-coins")
	case service.LoginUnknownUser:
		h.renderMessage(w, r, http.StatusOK, models.MessagePage{
			Title:    "User not found",
			Message:  "User not found.",
			LinkHref: "/sensei-login",
			LinkText: "Try again",
		})
	default:
		h.renderMessage(w, r, http.StatusOK, models.MessagePage{
			Title:    "Invalid password",
			Message:  "Invalid password.",
			LinkHref: "/sensei-login",
			LinkText: "Try again",
		})
	}
}

// senseiUser returns the authenticated sensei, or "" after redirecting the
// client to the login page.
func (h *Handler) senseiUser(w http.ResponseWriter, r *http.Request) string {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		redirect(w, r, "/sensei-login")
		return ""
	}
	return sess.SenseiUser
}

func (h *Handler) AddCoinsFormHandler(w http.ResponseWriter, r *http.Request) {
	username := h.senseiUser(w, r)
	if username == "" {
		return
	}

	page, err := h.ledger.AddCoinsForm(r.Context(), username)
	if err != nil {
		h.internalError(w, r, err, &models.MessagePage{
			Title:   "Error",
			Message: "Error loading Add Coins page",
		})
		return
	}
	h.render(w, r, http.StatusOK, "add_coins", page)
}

func (h *Handler) AddCoinsHandler(w http.ResponseWriter, r *http.Request) {
	username := h.senseiUser(w, r)
	if username == "" {
		return
	}

	_, err := h.ledger.RecordTransaction(r.Context(), username, models.AddCoinsRequest{
		NinjaName: r.PostFormValue("ninjaName"),
		Amount:    r.PostFormValue("amount"),
		Reason:    r.PostFormValue("reason"),
		Type:      r.PostFormValue("type"),
	})

	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.render(w, r, http.StatusBadRequest, "error", models.MessagePage{
			Message:  vErr.Msg,
			LinkHref: "/add-coins",
			LinkText: "Try Again",
		})
	case err != nil:
		h.internalError(w, r, err, &models.MessagePage{
			Message:  "We couldn't add the transaction. Please double check your inputs and try again.",
			LinkHref: "/add-coins",
			LinkText: "Try Again",
		})
	default:
		h.render(w, r, http.StatusOK, "success", models.SuccessPage{
			Message: "The transaction was added successfully.",
		})
	}
}

func (h *Handler) SenseiLogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Error("logout failed", "error", err.Error())
	}
	redirect(w, r, "/sensei-login")
}

// csrfFailedHandler answers a form post with a missing or stale token.
func (h *Handler) csrfFailedHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("csrf check failed", "path", r.URL.Path)
	h.renderMessage(w, r, http.StatusForbidden, models.MessagePage{
		Title:    "Form expired",
		Message:  "This form has expired. Please reload the page and try again.",
		LinkHref: "/",
		LinkText: "Start over",
	})
}
