package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/ids"
	"github.com/buildercircle/server/internal/domain/slug"
	"github.com/buildercircle/server/internal/sanitize"
)

const viewBumpTimeout = 5 * time.Second

// Repository is the persistence contract for resources. IncrementDownloads
// returns the post-increment value; both counter bumps are single atomic
// statements at the storage layer.
type Repository interface {
	List(ctx context.Context, filters Filters, params pagination.Params) ([]Resource, int64, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	GetBySlug(ctx context.Context, slug string) (*Resource, error)
	Create(ctx context.Context, resource *Resource) error
	Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Resource, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) (int64, error)
}

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "resources").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, params pagination.Params) ([]Resource, int64, error) {
	return s.repo.List(ctx, filters, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug resolves a resource for the public detail page; a hit bumps the
// view counter off the request path, so a slow or failed bump never delays
// or fails the read.
func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*Resource, error) {
	res, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	s.bumpViews(res.ID)
	return res, nil
}

func (s *Service) bumpViews(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), viewBumpTimeout)
		defer cancel()
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("resource_id", id).Msg("view count bump failed")
		}
	}()
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Resource, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}
	if !validType(params.Type) {
		return nil, FilterError{Field: "type", Message: "unsupported type"}
	}
	if !validLevel(params.Level) {
		return nil, FilterError{Field: "level", Message: "unsupported level"}
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("mint id: %w", err)
	}

	slugValue, err := slug.Unique(ctx, params.Title, "", s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	resource := &Resource{
		ID:          id,
		Slug:        slugValue,
		Title:       sanitize.Text(params.Title),
		Description: sanitize.HTML(params.Description),
		Type:        params.Type,
		Level:       params.Level,
		URL:         params.URL,
		ImageURL:    params.ImageURL,
		Author:      sanitize.Text(params.Author),
		Tags:        sanitize.TextSlice(params.Tags),
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, err
	}

	s.logger.Info().Str("resource_id", resource.ID).Str("slug", resource.Slug).Msg("resource created")
	return resource, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Resource, error) {
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
	if params.Type != nil && !validType(*params.Type) {
		return nil, FilterError{Field: "type", Message: "unsupported type"}
	}
	if params.Level != nil && !validLevel(*params.Level) {
		return nil, FilterError{Field: "level", Message: "unsupported level"}
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
	s.logger.Info().Str("resource_id", id).Msg("resource deleted")
	return nil
}

// TrackDownload bumps the download counter and returns the new value.
func (s *Service) TrackDownload(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementDownloads(ctx, id)
}
