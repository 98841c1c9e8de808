package events

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/ids"
	"github.com/buildercircle/server/internal/domain/slug"
	"github.com/buildercircle/server/internal/sanitize"
)

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "events").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, params pagination.Params) ([]Event, int64, error) {
	return s.repo.List(ctx, filters, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*Event, error) {
	return s.repo.GetBySlug(ctx, slugValue)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}
	if !validCategory(params.Category) {
		return nil, FilterError{Field: "category", Message: "unsupported category"}
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("mint id: %w", err)
	}

	slugValue, err := slug.Unique(ctx, params.Title, "", s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:          id,
		Slug:        slugValue,
		Title:       sanitize.Text(params.Title),
		Description: sanitize.HTML(params.Description),
		Category:    params.Category,
		Location:    sanitize.Text(params.Location),
		URL:         params.URL,
		ImageURL:    params.ImageURL,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Tags:        sanitize.TextSlice(params.Tags),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", event.ID).Str("slug", event.Slug).Msg("event created")
	return event, nil
}

// Update applies a partial merge. A changed title re-derives the slug with
// the same collision-suffix policy as create.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Event, error) {
	newSlug := ""
	if params.Title != nil {
		derived, err := slug.Unique(ctx, *params.Title, id, s.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		newSlug = derived
		clean := sanitize.Text(*params.Title)
		params.Title = &clean
	}
	if params.Description != nil {
		clean := sanitize.HTML(*params.Description)
		params.Description = &clean
	}
	if params.Category != nil && !validCategory(*params.Category) {
		return nil, FilterError{Field: "category", Message: "unsupported category"}
	}
	if params.Tags != nil {
		params.Tags = sanitize.TextSlice(params.Tags)
	}

	return s.repo.Update(ctx, id, params, newSlug)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", id).Msg("event deleted")
	return nil
}
