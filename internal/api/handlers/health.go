package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/buildercircle/server/internal/api/respond"
)

// Pinger reports storage reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports process liveness; it never touches dependencies.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusOK, "ok")
	})
}

// Readyz reports readiness: the database must answer a ping within two
// seconds or the probe fails with 503.
func Readyz(pinger Pinger, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			respond.Error(w, r, http.StatusServiceUnavailable, respond.CodeInternal,
				"database unavailable", err, env)
			return
		}
		respond.Message(w, http.StatusOK, "ready")
	})
}
