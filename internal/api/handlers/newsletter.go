package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/newsletter"
)

type NewsletterHandler struct {
	Service *newsletter.Service
	Env     string
}

func NewNewsletterHandler(service *newsletter.Service, env string) *NewsletterHandler {
	return &NewsletterHandler{Service: service, Env: env}
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subscribe is idempotent on email: active addresses no-op, unsubscribed
// ones are reactivated in place.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	sub, result, err := h.Service.Subscribe(r.Context(), req.Email, req.Name, newsletter.SourceWebsite)
	if err != nil {
		if errors.Is(err, newsletter.ErrInvalidEmail) {
			badRequest(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}

	switch result {
	case newsletter.AlreadySubscribed:
		respond.Message(w, http.StatusOK, "already subscribed")
	case newsletter.Resubscribed:
		respond.Message(w, http.StatusOK, "subscription reactivated")
	default:
		respond.Data(w, http.StatusCreated, sub)
	}
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

// Unsubscribe is idempotent; only unknown addresses are 404.
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		badRequest(w, r, h.Env, newsletter.ErrInvalidEmail)
		return
	}

	if _, err := h.Service.Unsubscribe(r.Context(), req.Email); err != nil {
		if errors.Is(err, newsletter.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "unsubscribed")
}

func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.Parse(r.URL.Query(), newsletter.DefaultLimit)
	if err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && status != newsletter.StatusActive && status != newsletter.StatusUnsubscribed {
		badRequest(w, r, h.Env, pagination.ParamError{Field: "status", Message: "must be active or unsubscribed"})
		return
	}

	items, total, err := h.Service.List(r.Context(), status, params)
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respondList(w, params, total, items, len(items))
}

func (h *NewsletterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, newsletter.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "subscriber deleted")
}
