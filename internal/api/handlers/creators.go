package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/creators"
)

type CreatorsHandler struct {
	Service *creators.Service
	Env     string
}

func NewCreatorsHandler(service *creators.Service, env string) *CreatorsHandler {
	return &CreatorsHandler{Service: service, Env: env}
}

func (h *CreatorsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, params, err := creators.ParseFilters(r.URL.Query())
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

func (h *CreatorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	creator, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, creators.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, creator)
}

func (h *CreatorsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	creator, err := h.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, creators.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, creator)
}

type creatorRequest struct {
	Name      string   `json:"name"`
	Bio       string   `json:"bio"`
	Category  string   `json:"category"`
	AvatarURL string   `json:"avatarUrl"`
	Website   string   `json:"website"`
	Twitter   string   `json:"twitter"`
	Github    string   `json:"github"`
	Tags      []string `json:"tags"`
	Featured  bool     `json:"featured"`
}

func (h *CreatorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req creatorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	creator, err := h.Service.Create(r.Context(), creators.CreateParams{
		Name:      req.Name,
		Bio:       req.Bio,
		Category:  req.Category,
		AvatarURL: req.AvatarURL,
		Website:   req.Website,
		Twitter:   req.Twitter,
		Github:    req.Github,
		Tags:      req.Tags,
		Featured:  req.Featured,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusCreated, creator)
}

type creatorUpdateRequest struct {
	Name      *string  `json:"name"`
	Bio       *string  `json:"bio"`
	Category  *string  `json:"category"`
	AvatarURL *string  `json:"avatarUrl"`
	Website   *string  `json:"website"`
	Twitter   *string  `json:"twitter"`
	Github    *string  `json:"github"`
	Tags      []string `json:"tags"`
	Featured  *bool    `json:"featured"`
}

func (h *CreatorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req creatorUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	creator, err := h.Service.Update(r.Context(), r.PathValue("id"), creators.UpdateParams{
		Name:      req.Name,
		Bio:       req.Bio,
		Category:  req.Category,
		AvatarURL: req.AvatarURL,
		Website:   req.Website,
		Twitter:   req.Twitter,
		Github:    req.Github,
		Tags:      req.Tags,
		Featured:  req.Featured,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, creator)
}

func (h *CreatorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, creators.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "creator deleted")
}

// mutationError maps create/update failures: caller mistakes to 400, slug
// races to 409, unknown failures to the redacted 500.
func (h *CreatorsHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr creators.FilterError
	switch {
	case errors.Is(err, creators.ErrNotFound):
		notFound(w, r, h.Env, err)
	case errors.Is(err, creators.ErrSlugTaken):
		conflict(w, r, h.Env, err)
	case errors.As(err, &filterErr) || invalidInput(err):
		badRequest(w, r, h.Env, err)
	default:
		internalError(w, r, h.Env, err)
	}
}
