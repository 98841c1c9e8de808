// Package events manages community events: hackathons, workshops, meetups,
// and conferences. Events are public-read; mutations are admin-gated at the
// router.
package events

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/buildercircle/server/internal/api/pagination"
)

var (
	ErrNotFound = errors.New("event not found")
	// ErrSlugTaken surfaces a unique-index collision on slug that slipped
	// past the pre-insert existence check.
	ErrSlugTaken = errors.New("event slug already in use")
)

// Categories form the closed set accepted by create, update, and filtering.
var Categories = []string{"hackathon", "workshop", "meetup", "conference", "other"}

func validCategory(value string) bool {
	for _, c := range Categories {
		if value == c {
			return true
		}
	}
	return false
}

// DefaultLimit is the page size when the client does not pass one.
const DefaultLimit = 10

// Event is a scheduled community event. Slug is unique and derived from the
// title; it is regenerated whenever the title changes.
type Event struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Filters narrows event listings. Zero-valued fields are omitted from the
// query rather than matching nothing.
type Filters struct {
	Category string
	Query    string
	Upcoming bool
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters reads list query parameters.
func ParseFilters(values url.Values) (Filters, pagination.Params, error) {
	filters := Filters{}

	if category := strings.TrimSpace(values.Get("category")); category != "" {
		category = strings.ToLower(category)
		if !validCategory(category) {
			return filters, pagination.Params{}, FilterError{Field: "category", Message: "unsupported category"}
		}
		filters.Category = category
	}

	filters.Query = strings.TrimSpace(values.Get("q"))
	filters.Upcoming = strings.EqualFold(strings.TrimSpace(values.Get("upcoming")), "true")

	params, err := pagination.Parse(values, DefaultLimit)
	if err != nil {
		return filters, params, err
	}
	return filters, params, nil
}

// CreateParams carries the validated fields for creating an event.
type CreateParams struct {
	Title       string `validate:"required,min=3,max=200"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Location    string `validate:"required"`
	URL         string `validate:"omitempty,url"`
	ImageURL    string `validate:"omitempty,url"`
	StartDate   time.Time
	EndDate     *time.Time
	Tags        []string
}

// UpdateParams applies a partial merge: nil fields keep their stored value.
type UpdateParams struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	URL         *string
	ImageURL    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
}
