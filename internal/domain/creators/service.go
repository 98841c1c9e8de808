package creators

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

// Repository is the persistence contract for creator profiles.
type Repository interface {
	List(ctx context.Context, filters Filters, params pagination.Params) ([]Creator, int64, error)
	GetByID(ctx context.Context, id string) (*Creator, error)
	GetBySlug(ctx context.Context, slug string) (*Creator, error)
	Create(ctx context.Context, creator *Creator) error
	Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Creator, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "creators").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, params pagination.Params) ([]Creator, int64, error) {
	return s.repo.List(ctx, filters, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Creator, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*Creator, error) {
	return s.repo.GetBySlug(ctx, slugValue)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Creator, error) {
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

	slugValue, err := slug.Unique(ctx, params.Name, "", s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	creator := &Creator{
		ID:        id,
		Slug:      slugValue,
		Name:      sanitize.Text(params.Name),
		Bio:       sanitize.HTML(params.Bio),
		Category:  params.Category,
		AvatarURL: params.AvatarURL,
		Website:   params.Website,
		Twitter:   sanitize.Text(params.Twitter),
		Github:    sanitize.Text(params.Github),
		Tags:      sanitize.TextSlice(params.Tags),
		Featured:  params.Featured,
	}
	if err := s.repo.Create(ctx, creator); err != nil {
		return nil, err
	}

	s.logger.Info().Str("creator_id", creator.ID).Str("slug", creator.Slug).Msg("creator created")
	return creator, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Creator, error) {
	newSlug := ""
	if params.Name != nil {
		derived, err := slug.Unique(ctx, *params.Name, id, s.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		newSlug = derived
		clean := sanitize.Text(*params.Name)
		params.Name = &clean
	}
	if params.Bio != nil {
		clean := sanitize.HTML(*params.Bio)
		params.Bio = &clean
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
	s.logger.Info().Str("creator_id", id).Msg("creator deleted")
	return nil
}
