package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, params, err := events.ParseFilters(r.URL.Query())
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

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, event)
}

func (h *EventsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, event)
}

type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"imageUrl"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Tags        []string   `json:"tags"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	event, err := h.Service.Create(r.Context(), events.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusCreated, event)
}

type eventUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Location    *string    `json:"location"`
	URL         *string    `json:"url"`
	ImageURL    *string    `json:"imageUrl"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Tags        []string   `json:"tags"`
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	event, err := h.Service.Update(r.Context(), r.PathValue("id"), events.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			notFound(w, r, h.Env, err)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Message(w, http.StatusOK, "event deleted")
}

// mutationError maps create/update failures: caller mistakes to 400, slug
// races to 409, unknown failures to the redacted 500.
func (h *EventsHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr events.FilterError
	switch {
	case errors.Is(err, events.ErrNotFound):
		notFound(w, r, h.Env, err)
	case errors.Is(err, events.ErrSlugTaken):
		conflict(w, r, h.Env, err)
	case errors.As(err, &filterErr) || invalidInput(err):
		badRequest(w, r, h.Env, err)
	default:
		internalError(w, r, h.Env, err)
	}
}
