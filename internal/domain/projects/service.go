package projects

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

// Repository is the persistence contract for builder projects.
type Repository interface {
	List(ctx context.Context, filters Filters, params pagination.Params) ([]Project, int64, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Project, error)
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
		logger:    logger.With().Str("component", "projects").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, params pagination.Params) ([]Project, int64, error) {
	return s.repo.List(ctx, filters, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*Project, error) {
	return s.repo.GetBySlug(ctx, slugValue)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}
	if !validCategory(params.Category) {
		return nil, FilterError{Field: "category", Message: "unsupported category"}
	}
	if params.Status == "" {
		params.Status = "active"
	}
	if !validStatus(params.Status) {
		return nil, FilterError{Field: "status", Message: "unsupported status"}
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("mint id: %w", err)
	}

	slugValue, err := slug.Unique(ctx, params.Title, "", s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	project := &Project{
		ID:          id,
		Slug:        slugValue,
		Title:       sanitize.Text(params.Title),
		Description: sanitize.HTML(params.Description),
		Category:    params.Category,
		Status:      params.Status,
		RepoURL:     params.RepoURL,
		DemoURL:     params.DemoURL,
		ImageURL:    params.ImageURL,
		Tags:        sanitize.TextSlice(params.Tags),
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Str("project_id", project.ID).Str("slug", project.Slug).Msg("project created")
	return project, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Project, error) {
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
	if params.Status != nil && !validStatus(*params.Status) {
		return nil, FilterError{Field: "status", Message: "unsupported status"}
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
	s.logger.Info().Str("project_id", id).Msg("project deleted")
	return nil
}
