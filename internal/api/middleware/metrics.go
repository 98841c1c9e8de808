package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/buildercircle/server/internal/metrics"
)

// Metrics records request counts and latencies. Routes are labeled with the
// mux pattern that matched, not the raw path, so path parameters don't
// explode label cardinality.
func Metrics(mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w}

			metrics.HTTPInFlight.Inc()
			next.ServeHTTP(rw, r)
			metrics.HTTPInFlight.Dec()

			_, route := mux.Handler(r)
			if route == "" {
				route = "unmatched"
			}
			status := rw.status
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
