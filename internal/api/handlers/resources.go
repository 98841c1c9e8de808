package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/resources"
)

type ResourcesHandler struct {
	Service *resources.Service
	Env     string
}

func NewResourcesHandler(service *resources.Service, env string) *ResourcesHandler {
	return &ResourcesHandler{Service: service, Env: env}
}

func (h *ResourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, params, err := resources.ParseFilters(r.URL.Query())
	if err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	items, total, err := h.Service.List(r.Context(), filters, params)
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respondList(w, params, total, items, len(items))
}

func (h *ResourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	resource, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, resource)
}

func (h *ResourcesHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	resource, err := h.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, resource)
}

type downloadResponse struct {
	Downloads int64 `json:"downloads"`
}

// TrackDownload bumps the download counter and returns the new total.
func (h *ResourcesHandler) TrackDownload(w http.ResponseWriter, r *http.Request) {
	downloads, err := h.Service.TrackDownload(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, downloadResponse{Downloads: downloads})
}

type resourceRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"imageUrl"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
}

func (h *ResourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	resource, err := h.Service.Create(r.Context(), resources.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Level:       req.Level,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		Author:      req.Author,
		Tags:        req.Tags,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusCreated, resource)
}

type resourceUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Level       *string  `json:"level"`
	URL         *string  `json:"url"`
	ImageURL    *string  `json:"imageUrl"`
	Author      *string  `json:"author"`
	Tags        []string `json:"tags"`
}

func (h *ResourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req resourceUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	resource, err := h.Service.Update(r.Context(), r.PathValue("id"), resources.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Level:       req.Level,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		Author:      req.Author,
		Tags:        req.Tags,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, resource)
}

func (h *ResourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "resource deleted")
}

// mutationError maps create/update failures: caller mistakes to 400, slug
// races to 409, unknown failures to the redacted 500.
func (h *ResourcesHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr resources.FilterError
	switch {
	case errors.Is(err, resources.ErrNotFound):
		notFound(w, r, h.Env, err)
	case errors.Is(err, resources.ErrSlugTaken):
		conflict(w, r, h.Env, err)
	case errors.As(err, &filterErr) || invalidInput(err):
		badRequest(w, r, h.Env, err)
	default:
		internalError(w, r, h.Env, err)
	}
}
