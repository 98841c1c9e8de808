// Package creators manages community creator profiles.
package creators

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/buildercircle/server/internal/api/pagination"
)

var (
	ErrNotFound  = errors.New("creator not found")
	ErrSlugTaken = errors.New("creator slug already in use")
)

var Categories = []string{"defi", "nft", "infrastructure", "gaming", "dao", "tooling", "other"}

const DefaultLimit = 12

func validCategory(value string) bool {
	for _, c := range Categories {
		if value == c {
			return true
		}
	}
	return false
}

type Creator struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Category  string    `json:"category"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Website   string    `json:"website,omitempty"`
	Twitter   string    `json:"twitter,omitempty"`
	Github    string    `json:"github,omitempty"`
	Tags      []string  `json:"tags"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Filters struct {
	Category string
	Query    string
	Featured *bool
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

	filters.Query = strings.TrimSpace(values.Get("q"))

	if raw := strings.TrimSpace(values.Get("featured")); raw != "" {
		featured := strings.EqualFold(raw, "true")
		filters.Featured = &featured
	}

	params, err := pagination.Parse(values, DefaultLimit)
	return filters, params, err
}

type CreateParams struct {
	Name      string `validate:"required,min=2,max=120"`
	Bio       string `validate:"required"`
	Category  string `validate:"required"`
	AvatarURL string `validate:"omitempty,url"`
	Website   string `validate:"omitempty,url"`
	Twitter   string `validate:"omitempty,max=60"`
	Github    string `validate:"omitempty,max=60"`
	Tags      []string
	Featured  bool
}

type UpdateParams struct {
	Name      *string
	Bio       *string
	Category  *string
	AvatarURL *string
	Website   *string
	Twitter   *string
	Github    *string
	Tags      []string
	Featured  *bool
}
