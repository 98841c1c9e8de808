// Package handlers contains the HTTP handlers for every API surface. Each
// handler owns request decoding and error translation; domain services own
// the behavior.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/api/respond"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads a JSON body with a size cap and unknown-field rejection.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// badRequest translates client-caused errors into a VALIDATION_ERROR
// envelope, attaching per-field details for validator failures.
func badRequest(w http.ResponseWriter, r *http.Request, env string, err error) {
	var (
		validationErrs validator.ValidationErrors
		paramErr       pagination.ParamError
	)
	switch {
	case errors.As(err, &validationErrs):
		details := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			details[fieldName(fe)] = fieldMessage(fe)
		}
		respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation,
			"validation failed", err, env, respond.WithDetails(details))
	case errors.As(err, &paramErr):
		respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation,
			paramErr.Error(), err, env)
	default:
		respond.Error(w, r, http.StatusBadRequest, respond.CodeValidation,
			err.Error(), err, env)
	}
}

// invalidInput reports whether the error stems from the request itself:
// struct-tag validation or query-parameter parsing.
func invalidInput(err error) bool {
	var (
		validationErrs validator.ValidationErrors
		paramErr       pagination.ParamError
	)
	return errors.As(err, &validationErrs) || errors.As(err, &paramErr)
}

// conflict writes the 409 envelope for duplicate entries.
func conflict(w http.ResponseWriter, r *http.Request, env string, err error) {
	respond.Error(w, r, http.StatusConflict, respond.CodeDuplicate, err.Error(), err, env)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "body"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// internalError writes the generic 500 envelope; respond redacts the
// message outside development and test.
func internalError(w http.ResponseWriter, r *http.Request, env string, err error) {
	respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternal,
		"internal server error", err, env)
}

// notFound writes the 404 envelope with the entity's own message.
func notFound(w http.ResponseWriter, r *http.Request, env string, err error) {
	respond.Error(w, r, http.StatusNotFound, respond.CodeNotFound, err.Error(), err, env)
}

// listPayload is the uniform shape for paginated collections.
type listPayload struct {
	Items any             `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// respondList writes a paginated collection with both body metadata and the
// X-Total-Count family of headers.
func respondList(w http.ResponseWriter, params pagination.Params, total int64, items any, returned int) {
	meta := pagination.NewMeta(params, total, returned)
	pagination.SetHeaders(w, meta)
	respond.Data(w, http.StatusOK, listPayload{Items: items, Meta: meta})
}
