package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buildercircle/server/internal/config"
)

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		GeneralPer15Minutes: 3,
		SubmitPerHour:       2,
		LoginPer15Minutes:   2,
		DownloadPerMinute:   2,
	}
}

func okHandlerFunc() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(handler http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGeneralTierExhaustsBudget(t *testing.T) {
	handler := NewRateLimiter(limiterConfig(), "test").Limit(TierGeneral)(okHandlerFunc())

	for i := 0; i < 3; i++ {
		rec := hit(handler, "/api/events", "203.0.113.7:4242")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i)
	}

	rec := hit(handler, "/api/events", "203.0.113.7:4242")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestSubmitTierEnforcedThroughFullChain(t *testing.T) {
	cfg := limiterConfig()
	cfg.SubmitPerHour = 1
	cfg.GeneralPer15Minutes = 100
	rl := NewRateLimiter(cfg, "test")

	// The router composition: stricter tier wraps the route, the general
	// tier wraps the whole mux.
	mux := http.NewServeMux()
	mux.Handle("/api/contact", rl.Limit(TierSubmit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))
	mux.Handle("/api/events", okHandlerFunc())
	handler := rl.Limit(TierGeneral)(mux)

	assert.Equal(t, http.StatusCreated, hit(handler, "/api/contact", "203.0.113.7:4242").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "/api/contact", "203.0.113.7:4242").Code)

	// The submit budget does not touch untiered routes.
	assert.Equal(t, http.StatusOK, hit(handler, "/api/events", "203.0.113.7:4242").Code)
}

func TestClientsAreLimitedIndependently(t *testing.T) {
	handler := NewRateLimiter(limiterConfig(), "test").Limit(TierGeneral)(okHandlerFunc())

	for i := 0; i < 3; i++ {
		hit(handler, "/api/events", "203.0.113.7:4242")
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "/api/events", "203.0.113.7:4242").Code)

	// A different client still has a full budget.
	assert.Equal(t, http.StatusOK, hit(handler, "/api/events", "198.51.100.9:4242").Code)
}

func TestHealthRoutesAreExempt(t *testing.T) {
	cfg := limiterConfig()
	cfg.GeneralPer15Minutes = 1
	handler := NewRateLimiter(cfg, "test").Limit(TierGeneral)(okHandlerFunc())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "/healthz", "203.0.113.7:4242").Code)
		assert.Equal(t, http.StatusOK, hit(handler, "/readyz", "203.0.113.7:4242").Code)
	}
}

func TestZeroBudgetDisablesTier(t *testing.T) {
	cfg := limiterConfig()
	cfg.GeneralPer15Minutes = 0
	handler := NewRateLimiter(cfg, "test").Limit(TierGeneral)(okHandlerFunc())

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "/api/events", "203.0.113.7:4242").Code)
	}
}

func TestLoginSuccessesNeverCharge(t *testing.T) {
	// Every login "succeeds", so the two-attempt budget never runs out.
	handler := NewRateLimiter(limiterConfig(), "test").Limit(TierLogin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			RefundLogin(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 10; i++ {
		rec := hit(handler, "/api/admin/login", "203.0.113.7:4242")
		assert.Equal(t, http.StatusOK, rec.Code, "successful attempt %d should pass", i)
	}
}

func TestLoginFailuresConsumeBudget(t *testing.T) {
	handler := NewRateLimiter(limiterConfig(), "test").Limit(TierLogin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

	assert.Equal(t, http.StatusUnauthorized, hit(handler, "/api/admin/login", "203.0.113.7:4242").Code)
	assert.Equal(t, http.StatusUnauthorized, hit(handler, "/api/admin/login", "203.0.113.7:4242").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "/api/admin/login", "203.0.113.7:4242").Code)
}

func TestLoginSuccessAfterFailuresStillPasses(t *testing.T) {
	fail := true
	handler := NewRateLimiter(limiterConfig(), "test").Limit(TierLogin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fail {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			RefundLogin(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	// One failure leaves one token; the successes do not spend it.
	assert.Equal(t, http.StatusUnauthorized, hit(handler, "/api/admin/login", "203.0.113.7:4242").Code)
	fail = false
	assert.Equal(t, http.StatusOK, hit(handler, "/api/admin/login", "203.0.113.7:4242").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "/api/admin/login", "203.0.113.7:4242").Code)
}

func TestForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	key := clientKey(&http.Request{
		RemoteAddr: "203.0.113.7:4242",
		Header:     http.Header{"X-Forwarded-For": {"10.0.0.1"}},
	}, nil)
	assert.Equal(t, "203.0.113.7", key)
}

func TestForwardedForHonoredFromTrustedProxy(t *testing.T) {
	cidrs := []string{"192.0.2.0/24"}

	key := clientKey(&http.Request{
		RemoteAddr: "192.0.2.10:4242",
		Header:     http.Header{"X-Forwarded-For": {"203.0.113.7, 192.0.2.10"}},
	}, cidrs)
	assert.Equal(t, "203.0.113.7", key)

	key = clientKey(&http.Request{
		RemoteAddr: "192.0.2.10:4242",
		Header:     http.Header{"X-Real-Ip": {"203.0.113.8"}},
	}, cidrs)
	assert.Equal(t, "203.0.113.8", key)
}
