// Package projects manages builder projects: community-built applications
// and tools tracked with a repository link, a lifecycle status, and tags.
package projects

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/buildercircle/server/internal/api/pagination"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrSlugTaken = errors.New("project slug already in use")
)

var (
	Categories = []string{"defi", "nft", "infrastructure", "gaming", "dao", "tooling", "other"}
	Statuses   = []string{"active", "paused", "completed"}
)

const DefaultLimit = 12

func validCategory(value string) bool {
	for _, c := range Categories {
		if value == c {
			return true
		}
	}
	return false
}

func validStatus(value string) bool {
	for _, s := range Statuses {
		if value == s {
			return true
		}
	}
	return false
}

type Project struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	RepoURL     string    `json:"repoUrl,omitempty"`
	DemoURL     string    `json:"demoUrl,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Filters struct {
	Category string
	Status   string
	Query    string
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

	if category := strings.ToLower(strings.TrimSpace(values.Get("category"))); category != "" {
		if !validCategory(category) {
			return filters, pagination.Params{}, FilterError{Field: "category", Message: "unsupported category"}
		}
		filters.Category = category
	}

	if status := strings.ToLower(strings.TrimSpace(values.Get("status"))); status != "" {
		if !validStatus(status) {
			return filters, pagination.Params{}, FilterError{Field: "status", Message: "unsupported status"}
		}
		filters.Status = status
	}

	filters.Query = strings.TrimSpace(values.Get("q"))

	params, err := pagination.Parse(values, DefaultLimit)
	return filters, params, err
}

type CreateParams struct {
	Title       string `validate:"required,min=3,max=200"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Status      string
	RepoURL     string `validate:"omitempty,url"`
	DemoURL     string `validate:"omitempty,url"`
	ImageURL    string `validate:"omitempty,url"`
	Tags        []string
}

type UpdateParams struct {
	Title       *string
	Description *string
	Category    *string
	Status      *string
	RepoURL     *string
	DemoURL     *string
	ImageURL    *string
	Tags        []string
}
