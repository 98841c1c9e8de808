package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/projects"
)

type ProjectsHandler struct {
	Service *projects.Service
	Env     string
}

func NewProjectsHandler(service *projects.Service, env string) *ProjectsHandler {
	return &ProjectsHandler{Service: service, Env: env}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, params, err := projects.ParseFilters(r.URL.Query())
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

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, project)
}

func (h *ProjectsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, project)
}

type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	RepoURL     string   `json:"repoUrl"`
	DemoURL     string   `json:"demoUrl"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	project, err := h.Service.Create(r.Context(), projects.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		RepoURL:     req.RepoURL,
		DemoURL:     req.DemoURL,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusCreated, project)
}

type projectUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Status      *string  `json:"status"`
	RepoURL     *string  `json:"repoUrl"`
	DemoURL     *string  `json:"demoUrl"`
	ImageURL    *string  `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req projectUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	project, err := h.Service.Update(r.Context(), r.PathValue("id"), projects.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		RepoURL:     req.RepoURL,
		DemoURL:     req.DemoURL,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, project)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "project deleted")
}

// mutationError maps create/update failures: caller mistakes to 400, slug
// races to 409, unknown failures to the redacted 500.
func (h *ProjectsHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr projects.FilterError
	switch {
	case errors.Is(err, projects.ErrNotFound):
		notFound(w, r, h.Env, err)
	case errors.Is(err, projects.ErrSlugTaken):
		conflict(w, r, h.Env, err)
	case errors.As(err, &filterErr) || invalidInput(err):
		badRequest(w, r, h.Env, err)
	default:
		internalError(w, r, h.Env, err)
	}
}
