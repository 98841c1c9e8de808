// Package blogs manages blog posts with a public/admin visibility split.
// Public listings only ever see published posts; admin listings see
// everything. View counts are an engagement signal bumped as a side channel
// on public slug lookups, keeping the read itself idempotent.
package blogs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/buildercircle/server/internal/api/pagination"
)

var (
	ErrNotFound  = errors.New("blog post not found")
	ErrSlugTaken = errors.New("blog slug already in use")
)

const DefaultLimit = 10

// RelatedLimit caps the related-posts lookup.
const RelatedLimit = 3

// FeaturedLimit caps the featured-posts lookup.
const FeaturedLimit = 5

// TrendingTagLimit caps the trending-tag aggregation.
const TrendingTagLimit = 10

// List modes select the sort order for public listings.
const (
	ModeRecent   = "recent"
	ModePopular  = "popular"  // by view count
	ModeTrending = "trending" // by likes, then recency
)

// Stats carries the post engagement counters, all monotonically
// non-decreasing.
type Stats struct {
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
	Bookmarks int64 `json:"bookmarks"`
}

type Blog struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	Author        string    `json:"author"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Tags          []string  `json:"tags"`
	Published     bool      `json:"published"`
	Featured      bool      `json:"featured"`
	Stats         Stats     `json:"stats"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CategoryCount is one bucket of the category aggregation. The synthetic
// "all" bucket carries the total published count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TagCount is one bucket of the trending-tag aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// Filters narrows blog listings. PublishedOnly is forced on for public
// routes and off for admin routes at the handler layer.
type Filters struct {
	Category      string
	Tag           string
	Query         string
	Mode          string
	Featured      *bool
	PublishedOnly bool
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func ParseFilters(values url.Values) (Filters, pagination.Params, error) {
	filters := Filters{Mode: ModeRecent}

	filters.Category = strings.TrimSpace(values.Get("category"))
	filters.Tag = strings.TrimSpace(values.Get("tag"))
	filters.Query = strings.TrimSpace(values.Get("q"))

	if mode := strings.ToLower(strings.TrimSpace(values.Get("filter"))); mode != "" {
		switch mode {
		case ModeRecent, ModePopular, ModeTrending:
			filters.Mode = mode
		default:
			return filters, pagination.Params{}, FilterError{Field: "filter", Message: "must be one of: recent, popular, trending"}
		}
	}

	if raw := strings.TrimSpace(values.Get("featured")); raw != "" {
		featured := strings.EqualFold(raw, "true")
		filters.Featured = &featured
	}

	params, err := pagination.Parse(values, DefaultLimit)
	return filters, params, err
}

type CreateParams struct {
	Title         string `validate:"required,min=3,max=200"`
	Excerpt       string `validate:"required,max=500"`
	Content       string `validate:"required"`
	Category      string `validate:"required,max=60"`
	Author        string `validate:"required,max=120"`
	CoverImageURL string `validate:"omitempty,url"`
	Tags          []string
	Published     bool
	Featured      bool
}

type UpdateParams struct {
	Title         *string
	Excerpt       *string
	Content       *string
	Category      *string
	Author        *string
	CoverImageURL *string
	Tags          []string
	Published     *bool
	Featured      *bool
}
