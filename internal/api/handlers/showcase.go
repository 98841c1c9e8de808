package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/showcase"
)

type ShowcaseHandler struct {
	Service *showcase.Service
	Env     string
}

func NewShowcaseHandler(service *showcase.Service, env string) *ShowcaseHandler {
	return &ShowcaseHandler{Service: service, Env: env}
}

func (h *ShowcaseHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, params, err := showcase.ParseFilters(r.URL.Query())
	if err != nil {
		badRequest(w, r, h.Env, err)
		return
	}
	filters.PublishedOnly = !isAdmin(r)

	items, total, err := h.Service.List(r.Context(), filters, params)
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respondList(w, params, total, items, len(items))
}

func (h *ShowcaseHandler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Featured(r.Context())
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, items)
}

func (h *ShowcaseHandler) Trending(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.Parse(r.URL.Query(), showcase.DefaultLimit)
	if err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	items, total, err := h.Service.Trending(r.Context(), params)
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respondList(w, params, total, items, len(items))
}

func (h *ShowcaseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, stats)
}

func (h *ShowcaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, showcase.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, project)
}

func (h *ShowcaseHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.GetBySlug(r.Context(), r.PathValue("slug"), !isAdmin(r))
	if err != nil {
		if errors.Is(err, showcase.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, project)
}

type starResponse struct {
	Stars int64 `json:"stars"`
}

func (h *ShowcaseHandler) Star(w http.ResponseWriter, r *http.Request) {
	stars, err := h.Service.Star(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, showcase.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, starResponse{Stars: stars})
}

func (h *ShowcaseHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.Service.Like(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, showcase.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, likeResponse{Likes: likes})
}

type showcaseRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Creator     string   `json:"creator"`
	URL         string   `json:"url"`
	RepoURL     string   `json:"repoUrl"`
	ImageURL    string   `json:"imageUrl"`
	TVLUSD      int64    `json:"tvlUsd"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
	Featured    bool     `json:"featured"`
}

func (h *ShowcaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req showcaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	project, err := h.Service.Create(r.Context(), showcase.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Creator:     req.Creator,
		URL:         req.URL,
		RepoURL:     req.RepoURL,
		ImageURL:    req.ImageURL,
		TVLUSD:      req.TVLUSD,
		Tags:        req.Tags,
		Published:   req.Published,
		Featured:    req.Featured,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusCreated, project)
}

type showcaseUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Creator     *string  `json:"creator"`
	URL         *string  `json:"url"`
	RepoURL     *string  `json:"repoUrl"`
	ImageURL    *string  `json:"imageUrl"`
	TVLUSD      *int64   `json:"tvlUsd"`
	Tags        []string `json:"tags"`
	Published   *bool    `json:"published"`
	Featured    *bool    `json:"featured"`
}

func (h *ShowcaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req showcaseUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	project, err := h.Service.Update(r.Context(), r.PathValue("id"), showcase.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Creator:     req.Creator,
		URL:         req.URL,
		RepoURL:     req.RepoURL,
		ImageURL:    req.ImageURL,
		TVLUSD:      req.TVLUSD,
		Tags:        req.Tags,
		Published:   req.Published,
		Featured:    req.Featured,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, project)
}

func (h *ShowcaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, showcase.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "showcase project deleted")
}

// mutationError maps create/update failures: caller mistakes to 400, slug
// races to 409, unknown failures to the redacted 500.
func (h *ShowcaseHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr showcase.FilterError
	switch {
	case errors.Is(err, showcase.ErrNotFound):
		notFound(w, r, h.Env, err)
	case errors.Is(err, showcase.ErrSlugTaken):
		conflict(w, r, h.Env, err)
	case errors.As(err, &filterErr) || invalidInput(err):
		badRequest(w, r, h.Env, err)
	default:
		internalError(w, r, h.Env, err)
	}
}
