package events

import (
	"context"

	"github.com/buildercircle/server/internal/api/pagination"
)

// Repository is the persistence contract for events. List returns the page
// of matching events plus the total count for the same filter.
type Repository interface {
	List(ctx context.Context, filters Filters, params pagination.Params) ([]Event, int64, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Event, error)
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}
