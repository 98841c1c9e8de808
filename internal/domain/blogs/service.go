package blogs

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

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	validator *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger.With().Str("component", "blogs").Logger(),
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, params pagination.Params) ([]Blog, int64, error) {
	return s.repo.List(ctx, filters, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Blog, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns a post by slug. When publishedOnly is set (public
// routes) the lookup only matches published posts and a hit bumps the view
// counter off the request path, so a slow or failed bump never delays or
// fails the read.
func (s *Service) GetBySlug(ctx context.Context, slugValue string, publishedOnly bool) (*Blog, error) {
	blog, err := s.repo.GetBySlug(ctx, slugValue, publishedOnly)
	if err != nil {
		return nil, err
	}
	if publishedOnly {
		s.bumpViews(blog.ID)
	}
	return blog, nil
}

func (s *Service) bumpViews(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), viewBumpTimeout)
		defer cancel()
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("blog_id", id).Msg("view count bump failed")
		}
	}()
}

func (s *Service) Featured(ctx context.Context) ([]Blog, error) {
	return s.repo.ListFeatured(ctx, FeaturedLimit)
}

// Categories returns per-category published counts with a synthetic "all"
// bucket carrying the grand total, sorted by the repository largest-first.
func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	return append([]CategoryCount{{Category: "all", Count: total}}, counts...), nil
}

func (s *Service) TrendingTags(ctx context.Context) ([]TagCount, error) {
	return s.repo.TrendingTags(ctx, TrendingTagLimit)
}

// Related returns published posts sharing the category or a tag with the
// given post, never including the post itself.
func (s *Service) Related(ctx context.Context, slugValue string) ([]Blog, error) {
	blog, err := s.repo.GetBySlug(ctx, slugValue, true)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRelated(ctx, blog.ID, blog.Category, blog.Tags, RelatedLimit)
}

// Like bumps the like counter and returns the new count.
func (s *Service) Like(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementLikes(ctx, id)
}

// Bookmark bumps the bookmark counter and returns the new count.
func (s *Service) Bookmark(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementBookmarks(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Blog, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("mint id: %w", err)
	}

	slugValue, err := slug.Unique(ctx, params.Title, "", s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	blog := &Blog{
		ID:            id,
		Slug:          slugValue,
		Title:         sanitize.Text(params.Title),
		Excerpt:       sanitize.Text(params.Excerpt),
		Content:       sanitize.HTML(params.Content),
		Category:      sanitize.Text(params.Category),
		Author:        sanitize.Text(params.Author),
		CoverImageURL: params.CoverImageURL,
		Tags:          sanitize.TextSlice(params.Tags),
		Published:     params.Published,
		Featured:      params.Featured,
	}
	if err := s.repo.Create(ctx, blog); err != nil {
		return nil, err
	}

	s.logger.Info().Str("blog_id", blog.ID).Str("slug", blog.Slug).Bool("published", blog.Published).Msg("blog post created")
	return blog, nil
}

// Update applies a partial merge. A changed title re-derives the slug with
// the same collision-suffix policy as create.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Blog, error) {
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
	if params.Excerpt != nil {
		clean := sanitize.Text(*params.Excerpt)
		params.Excerpt = &clean
	}
	if params.Content != nil {
		clean := sanitize.HTML(*params.Content)
		params.Content = &clean
	}
	if params.Category != nil {
		clean := sanitize.Text(*params.Category)
		params.Category = &clean
	}
	if params.Author != nil {
		clean := sanitize.Text(*params.Author)
		params.Author = &clean
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
	s.logger.Info().Str("blog_id", id).Msg("blog post deleted")
	return nil
}
