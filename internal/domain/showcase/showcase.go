// Package showcase manages the showcased project directory: community
// projects with engagement counters (stars, likes) and a total-value-locked
// figure used for platform-wide statistics.
package showcase

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/buildercircle/server/internal/api/pagination"
)

var (
	ErrNotFound  = errors.New("showcase project not found")
	ErrSlugTaken = errors.New("showcase slug already in use")
)

const DefaultLimit = 12

// List modes select the sort order for public listings.
const (
	ModeRecent   = "recent"
	ModePopular  = "popular"  // by stars
	ModeTrending = "trending" // by likes, then recency
)

var Categories = []string{"defi", "nft", "infrastructure", "gaming", "dao", "tooling", "other"}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Stats carries the per-project engagement counters.
type Stats struct {
	Stars int64 `json:"stars"`
	Likes int64 `json:"likes"`
}

type Project struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Creator     string    `json:"creator"`
	URL         string    `json:"url,omitempty"`
	RepoURL     string    `json:"repoUrl,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	// TVLUSD is the project's total value locked in whole US dollars.
	// Display strings are derived with FormatMagnitude, never stored.
	TVLUSD    int64     `json:"tvlUsd"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	Featured  bool      `json:"featured"`
	Stats     Stats     `json:"stats"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlatformStats is the aggregate over all published projects.
type PlatformStats struct {
	Projects   int64  `json:"projects"`
	Creators   int64  `json:"creators"`
	TotalStars int64  `json:"totalStars"`
	TotalTVL   int64  `json:"totalTvlUsd"`
	TVLDisplay string `json:"tvlDisplay"`
}

// FormatMagnitude renders a USD amount as a rounded-down magnitude string:
// 950 -> "950+", 12_400 -> "12K+", 1_500_000 -> "1.5M+", 2_000_000_000 -> "2B+".
func FormatMagnitude(usd int64) string {
	switch {
	case usd >= 1_000_000_000:
		return trimZero(float64(usd)/1_000_000_000) + "B+"
	case usd >= 1_000_000:
		return trimZero(float64(usd)/1_000_000) + "M+"
	case usd >= 1_000:
		return trimZero(float64(usd)/1_000) + "K+"
	case usd <= 0:
		return "0"
	default:
		return fmt.Sprintf("%d+", usd)
	}
}

// trimZero renders one decimal place truncated toward zero, dropping a
// trailing ".0". Truncation keeps the "+" suffix honest: $1,950,000 reads
// "1.9M+", never "2M+".
func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", math.Trunc(v*10)/10)
	return strings.TrimSuffix(s, ".0")
}

// Filters narrows showcase listings. PublishedOnly is forced on for public
// routes and off for admin routes at the handler layer.
type Filters struct {
	Category      string
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

	if category := strings.TrimSpace(values.Get("category")); category != "" {
		if !validCategory(category) {
			return filters, pagination.Params{}, FilterError{Field: "category", Message: "unsupported category"}
		}
		filters.Category = category
	}
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
	Title       string `validate:"required,min=2,max=200"`
	Description string `validate:"required,max=5000"`
	Category    string `validate:"required"`
	Creator     string `validate:"required,max=120"`
	URL         string `validate:"omitempty,url"`
	RepoURL     string `validate:"omitempty,url"`
	ImageURL    string `validate:"omitempty,url"`
	TVLUSD      int64  `validate:"min=0"`
	Tags        []string
	Published   bool
	Featured    bool
}

type UpdateParams struct {
	Title       *string
	Description *string
	Category    *string
	Creator     *string
	URL         *string
	RepoURL     *string
	ImageURL    *string
	TVLUSD      *int64
	Tags        []string
	Published   *bool
	Featured    *bool
}
