package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/middleware"
	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/blogs"
)

type BlogsHandler struct {
	Service *blogs.Service
	Env     string
}

func NewBlogsHandler(service *blogs.Service, env string) *BlogsHandler {
	return &BlogsHandler{Service: service, Env: env}
}

// isAdmin reports whether the request carries verified admin claims; the
// routes run behind OptionalAdmin so drafts stay hidden from the public.
func isAdmin(r *http.Request) bool {
	_, ok := middleware.ClaimsFromContext(r.Context())
	return ok
}

func (h *BlogsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, params, err := blogs.ParseFilters(r.URL.Query())
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

func (h *BlogsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Featured(r.Context())
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, items)
}

func (h *BlogsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.Categories(r.Context())
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, counts)
}

func (h *BlogsHandler) TrendingTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Service.TrendingTags(r.Context())
	if err != nil {
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, tags)
}

func (h *BlogsHandler) Get(w http.ResponseWriter, r *http.Request) {
	blog, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, blog)
}

// GetBySlug is the public post read; it only sees published posts and
// bumps the view counter as a side effect. Admins also see drafts, with no
// view bump.
func (h *BlogsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	blog, err := h.Service.GetBySlug(r.Context(), r.PathValue("slug"), !isAdmin(r))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, blog)
}

func (h *BlogsHandler) Related(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Related(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, items)
}

type likeResponse struct {
	Likes int64 `json:"likes"`
}

func (h *BlogsHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.Service.Like(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, likeResponse{Likes: likes})
}

type bookmarkResponse struct {
	Bookmarks int64 `json:"bookmarks"`
}

func (h *BlogsHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.Service.Bookmark(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, bookmarkResponse{Bookmarks: bookmarks})
}

type blogRequest struct {
	Title         string   `json:"title"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Author        string   `json:"author"`
	CoverImageURL string   `json:"coverImageUrl"`
	Tags          []string `json:"tags"`
	Published     bool     `json:"published"`
	Featured      bool     `json:"featured"`
}

func (h *BlogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	blog, err := h.Service.Create(r.Context(), blogs.CreateParams{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Category:      req.Category,
		Author:        req.Author,
		CoverImageURL: req.CoverImageURL,
		Tags:          req.Tags,
		Published:     req.Published,
		Featured:      req.Featured,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusCreated, blog)
}

type blogUpdateRequest struct {
	Title         *string  `json:"title"`
	Excerpt       *string  `json:"excerpt"`
	Content       *string  `json:"content"`
	Category      *string  `json:"category"`
	Author        *string  `json:"author"`
	CoverImageURL *string  `json:"coverImageUrl"`
	Tags          []string `json:"tags"`
	Published     *bool    `json:"published"`
	Featured      *bool    `json:"featured"`
}

func (h *BlogsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req blogUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	blog, err := h.Service.Update(r.Context(), r.PathValue("id"), blogs.UpdateParams{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Category:      req.Category,
		Author:        req.Author,
		CoverImageURL: req.CoverImageURL,
		Tags:          req.Tags,
		Published:     req.Published,
		Featured:      req.Featured,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, blog)
}

func (h *BlogsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, blogs.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "blog post deleted")
}

// mutationError maps create/update failures: caller mistakes to 400, slug
// races to 409, unknown failures to the redacted 500.
func (h *BlogsHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr blogs.FilterError
	switch {
	case errors.Is(err, blogs.ErrNotFound):
		notFound(w, r, h.Env, err)
	case errors.Is(err, blogs.ErrSlugTaken):
		conflict(w, r, h.Env, err)
	case errors.As(err, &filterErr) || invalidInput(err):
		badRequest(w, r, h.Env, err)
	default:
		internalError(w, r, h.Env, err)
	}
}
