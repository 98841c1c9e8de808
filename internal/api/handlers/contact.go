package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/contact"
)

type ContactHandler struct {
	Service *contact.Service
	Env     string
}

func NewContactHandler(service *contact.Service, env string) *ContactHandler {
	return &ContactHandler{Service: service, Env: env}
}

type contactRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Company             string `json:"company"`
	Subject             string `json:"subject"`
	Message             string `json:"message"`
	SubscribeNewsletter bool   `json:"subscribeNewsletter"`
}

// Submit stores a contact submission. Newsletter opt-in and emails are
// side effects handled by the service; the submitter always gets a clean
// success once the record is stored.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	sub, err := h.Service.Submit(r.Context(), contact.SubmitParams{
		Name:                req.Name,
		Email:               req.Email,
		Company:             req.Company,
		Subject:             req.Subject,
		Message:             req.Message,
		SubscribeNewsletter: req.SubscribeNewsletter,
	})
	if err != nil {
		badRequest(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusCreated, sub)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.Parse(r.URL.Query(), contact.DefaultLimit)
	if err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	items, total, err := h.Service.List(r.Context(), params)
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respondList(w, params, total, items, len(items))
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, sub)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "contact submission deleted")
}
