package showcase

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

// FeaturedLimit caps the featured-projects lookup.
const FeaturedLimit = 6

// Repository persists showcase projects. List returns the total match
// count alongside the page.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*Project, error)
	List(ctx context.Context, filters Filters, params pagination.Params) ([]Project, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]Project, error)
	Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Project, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	PlatformStats(ctx context.Context) (*PlatformStats, error)

	IncrementStars(ctx context.Context, id string) (int64, error)
	IncrementLikes(ctx context.Context, id string) (int64, error)
}

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "showcase").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, params pagination.Params) ([]Project, int64, error) {
	return s.repo.List(ctx, filters, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string, publishedOnly bool) (*Project, error) {
	return s.repo.GetBySlug(ctx, slugValue, publishedOnly)
}

func (s *Service) Featured(ctx context.Context) ([]Project, error) {
	return s.repo.ListFeatured(ctx, FeaturedLimit)
}

// Trending lists published projects by likes, most recent first on ties.
func (s *Service) Trending(ctx context.Context, params pagination.Params) ([]Project, int64, error) {
	return s.repo.List(ctx, Filters{Mode: ModeTrending, PublishedOnly: true}, params)
}

// Stats returns the platform aggregate with the TVL display string filled in.
func (s *Service) Stats(ctx context.Context) (*PlatformStats, error) {
	stats, err := s.repo.PlatformStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.TVLDisplay = FormatMagnitude(stats.TotalTVL)
	return stats, nil
}

// Star bumps the star counter and returns the new count.
func (s *Service) Star(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementStars(ctx, id)
}

// Like bumps the like counter and returns the new count.
func (s *Service) Like(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementLikes(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
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

	project := &Project{
		ID:          id,
		Slug:        slugValue,
		Title:       sanitize.Text(params.Title),
		Description: sanitize.HTML(params.Description),
		Category:    params.Category,
		Creator:     sanitize.Text(params.Creator),
		URL:         params.URL,
		RepoURL:     params.RepoURL,
		ImageURL:    params.ImageURL,
		TVLUSD:      params.TVLUSD,
		Tags:        sanitize.TextSlice(params.Tags),
		Published:   params.Published,
		Featured:    params.Featured,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Str("project_id", project.ID).Str("slug", project.Slug).Msg("showcase project created")
	return project, nil
}

// Update applies a partial merge. A changed title re-derives the slug with
// the same collision-suffix policy as create.
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
	if params.Creator != nil {
		clean := sanitize.Text(*params.Creator)
		params.Creator = &clean
	}
	if params.TVLUSD != nil && *params.TVLUSD < 0 {
		return nil, FilterError{Field: "tvlUsd", Message: "must not be negative"}
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
	s.logger.Info().Str("project_id", id).Msg("showcase project deleted")
	return nil
}
