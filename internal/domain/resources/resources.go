// Package resources manages learning resources: tutorials, guides, videos,
// tools, and courses, filterable by type and difficulty level.
package resources

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/buildercircle/server/internal/api/pagination"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrSlugTaken = errors.New("resource slug already in use")
)

var (
	Types  = []string{"Tutorial", "Guide", "Video", "Tool", "Documentation", "Course"}
	Levels = []string{"Beginner", "Intermediate", "Advanced"}
)

const DefaultLimit = 12

func validType(value string) bool {
	for _, t := range Types {
		if value == t {
			return true
		}
	}
	return false
}

func validLevel(value string) bool {
	for _, l := range Levels {
		if value == l {
			return true
		}
	}
	return false
}

// Stats carries the resource engagement counters. Both are monotonically
// non-decreasing; increments happen at the storage layer.
type Stats struct {
	Views     int64 `json:"views"`
	Downloads int64 `json:"downloads"`
}

type Resource struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Level       string    `json:"level"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Author      string    `json:"author,omitempty"`
	Tags        []string  `json:"tags"`
	Stats       Stats     `json:"stats"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filters narrows resource listings. Query matches title, description, and
// tags with case-insensitive substring semantics.
type Filters struct {
	Type  string
	Level string
	Tag   string
	Query string
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func ParseFilters(values url.Values) (Filters, pagination.Params, error) {
	filters := Filters{}

	if typ := strings.TrimSpace(values.Get("type")); typ != "" {
		if !validType(typ) {
			return filters, pagination.Params{}, FilterError{Field: "type", Message: "unsupported type"}
		}
		filters.Type = typ
	}

	if level := strings.TrimSpace(values.Get("level")); level != "" {
		if !validLevel(level) {
			return filters, pagination.Params{}, FilterError{Field: "level", Message: "unsupported level"}
		}
		filters.Level = level
	}

	filters.Tag = strings.TrimSpace(values.Get("tag"))
	filters.Query = strings.TrimSpace(values.Get("q"))

	params, err := pagination.Parse(values, DefaultLimit)
	return filters, params, err
}

type CreateParams struct {
	Title       string `validate:"required,min=3,max=200"`
	Description string `validate:"required"`
	Type        string `validate:"required"`
	Level       string `validate:"required"`
	URL         string `validate:"required,url"`
	ImageURL    string `validate:"omitempty,url"`
	Author      string `validate:"omitempty,max=120"`
	Tags        []string
}

type UpdateParams struct {
	Title       *string
	Description *string
	Type        *string
	Level       *string
	URL         *string
	ImageURL    *string
	Author      *string
	Tags        []string
}
