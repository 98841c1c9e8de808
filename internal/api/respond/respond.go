// Package respond writes the uniform JSON envelope used by every endpoint:
//
//	success: {"success": true, "data": …, "message": …}
//	failure: {"success": false, "error": {"code": …, "message": …, "details": …}}
//
// Error responses carry a machine-readable code; outside development and test
// the human-readable message is replaced with the generic status text so
// internals never leak.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Machine-readable error codes surfaced to clients.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeTokenExpired  = "TOKEN_EXPIRED"
	CodeAdminNotFound = "ADMIN_NOT_FOUND"
	CodeInvalidLogin  = "INVALID_CREDENTIALS"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeDuplicate     = "DUPLICATE_ENTRY"
	CodeRateLimited   = "RATE_LIMIT_EXCEEDED"
	CodeInternal      = "INTERNAL_ERROR"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Data writes a success envelope with a payload.
func Data(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Data: data})
}

// Message writes a success envelope with a message and no payload.
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: true, Message: message})
}

// Option customizes an error envelope.
type Option func(*errorBody)

// WithDetails attaches structured details, e.g. per-field validation failures.
func WithDetails(details any) Option {
	return func(b *errorBody) {
		b.Details = details
	}
}

// Error writes a failure envelope and logs it with the request-scoped logger:
// 5xx at error level, 4xx at warn. err may be nil for purely client-caused
// failures that need no log context.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, err error, env string, opts ...Option) {
	body := errorBody{Code: code, Message: message}
	for _, opt := range opts {
		opt(&body)
	}

	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	if status >= http.StatusInternalServerError && env != "development" && env != "test" {
		body.Message = http.StatusText(status)
		body.Details = nil
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("code", code).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	write(w, status, envelope{Success: false, Error: &body})
}

func write(w http.ResponseWriter, status int, payload envelope) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal Server Error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
