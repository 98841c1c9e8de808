package blogs

import (
	"context"

	"github.com/buildercircle/server/internal/api/pagination"
)

// Repository persists blog posts. List returns the total match count
// alongside the page so handlers can build pagination metadata.
type Repository interface {
	Create(ctx context.Context, blog *Blog) error
	GetByID(ctx context.Context, id string) (*Blog, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*Blog, error)
	List(ctx context.Context, filters Filters, params pagination.Params) ([]Blog, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]Blog, error)
	ListRelated(ctx context.Context, id, category string, tags []string, limit int) ([]Blog, error)
	Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Blog, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	TrendingTags(ctx context.Context, limit int) ([]TagCount, error)

	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) (int64, error)
	IncrementBookmarks(ctx context.Context, id string) (int64, error)
}
