// Package pagination implements page/limit parsing and response metadata for
// list endpoints. Totals come from the repository's filtered count; hasMore is
// derived, never re-queried.
package pagination

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MaxLimit caps page size regardless of the entity default.
const MaxLimit = 100

type ParamError struct {
	Field   string
	Message string
}

func (e ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Params is a parsed page/limit pair.
type Params struct {
	Page  int
	Limit int
}

// Parse reads page and limit query parameters, applying the entity default
// when limit is absent.
func Parse(values url.Values, defaultLimit int) (Params, error) {
	params := Params{Page: 1, Limit: defaultLimit}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, ParamError{Field: "page", Message: "must be a positive integer"}
		}
		params.Page = page
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return params, ParamError{Field: "limit", Message: "must be a positive integer"}
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		params.Limit = limit
	}

	return params, nil
}

// Offset computes the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block embedded in list payloads.
type Meta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// NewMeta derives metadata from the request params, the filtered total, and
// the number of items actually returned.
func NewMeta(params Params, total int64, returned int) Meta {
	return Meta{
		Page:    params.Page,
		Limit:   params.Limit,
		Total:   total,
		HasMore: int64(params.Offset()+returned) < total,
	}
}

// SetHeaders surfaces the pagination metadata as response headers for client
// convenience.
func SetHeaders(w http.ResponseWriter, meta Meta) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(meta.Total, 10))
	w.Header().Set("X-Page", strconv.Itoa(meta.Page))
	w.Header().Set("X-Limit", strconv.Itoa(meta.Limit))
}
