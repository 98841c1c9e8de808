package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/config"
)

// RateLimitTier selects the request budget applied by the limiter.
type RateLimitTier string

const (
	// TierGeneral covers every route without a stricter tier.
	TierGeneral RateLimitTier = "general"
	// TierSubmit covers the public contact-form and newsletter submissions.
	TierSubmit RateLimitTier = "submit"
	// TierLogin covers admin login attempts. Successful logins are not
	// charged, so only failures consume the budget.
	TierLogin RateLimitTier = "login"
	// TierDownload covers resource download tracking.
	TierDownload RateLimitTier = "download"
)

type rateLimitKey string

const loginOutcomeKey rateLimitKey = "loginOutcome"

type loginOutcome struct {
	succeeded bool
}

// RefundLogin marks the request's login attempt successful so it is not
// charged against the attempt budget.
func RefundLogin(ctx context.Context) {
	if outcome, ok := ctx.Value(loginOutcomeKey).(*loginOutcome); ok && outcome != nil {
		outcome.succeeded = true
	}
}

type tierSpec struct {
	limit  int
	window time.Duration
}

// RateLimiter enforces per-client token buckets keyed on tier and client
// IP. One instance backs both the router-wide general wrap and the
// per-route tiers so every budget draws from the same store.
type RateLimiter struct {
	store *limiterStore
	cfg   config.RateLimitConfig
	env   string
}

func NewRateLimiter(cfg config.RateLimitConfig, env string) *RateLimiter {
	return &RateLimiter{store: newLimiterStore(cfg), cfg: cfg, env: env}
}

// Limit enforces the tier's budget on the wrapped handler. Health probes
// are exempt and a zero budget disables the tier. Stricter tiers stack on
// the general wrap: a submit-tier request spends from both buckets.
func (l *RateLimiter) Limit(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			limiter, spec := l.store.limiter(tier, clientKey(r, l.cfg.TrustedProxyCIDRs))
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			if tier == TierLogin {
				l.serveLogin(w, r, next, limiter, spec)
				return
			}

			if !limiter.Allow() {
				l.reject(w, r, spec)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// serveLogin charges the bucket after the handler runs. rate.Limiter has
// no way to hand back a spent token, so instead of reserve-and-cancel the
// attempt is only charged when the handler does not mark it successful.
func (l *RateLimiter) serveLogin(w http.ResponseWriter, r *http.Request, next http.Handler, limiter *rate.Limiter, spec tierSpec) {
	if limiter.Tokens() < 1 {
		l.reject(w, r, spec)
		return
	}

	outcome := &loginOutcome{}
	ctx := context.WithValue(r.Context(), loginOutcomeKey, outcome)
	next.ServeHTTP(w, r.WithContext(ctx))

	if !outcome.succeeded {
		limiter.Allow()
	}
}

func (l *RateLimiter) reject(w http.ResponseWriter, r *http.Request, spec tierSpec) {
	retryAfter := int(spec.window.Seconds()) / spec.limit
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	respond.Error(w, r, http.StatusTooManyRequests, respond.CodeRateLimited,
		"too many requests, slow down", nil, l.env)
}

// Stop shuts down the background cleanup goroutine.
func (l *RateLimiter) Stop() {
	l.store.Stop()
}

type limiterStore struct {
	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	specs       map[RateLimitTier]tierSpec
	stopCleanup chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg config.RateLimitConfig) *limiterStore {
	store := &limiterStore{
		limiters: make(map[string]*limiterEntry),
		specs: map[RateLimitTier]tierSpec{
			TierGeneral:  {limit: cfg.GeneralPer15Minutes, window: 15 * time.Minute},
			TierSubmit:   {limit: cfg.SubmitPerHour, window: time.Hour},
			TierLogin:    {limit: cfg.LoginPer15Minutes, window: 15 * time.Minute},
			TierDownload: {limit: cfg.DownloadPerMinute, window: time.Minute},
		},
		stopCleanup: make(chan struct{}),
	}

	// Stale entries are evicted to keep memory bounded under churny or
	// hostile traffic.
	go store.cleanupLoop()

	return store
}

func (s *limiterStore) limiter(tier RateLimitTier, key string) (*rate.Limiter, tierSpec) {
	spec, ok := s.specs[tier]
	if !ok || spec.limit <= 0 {
		return nil, spec
	}

	lookup := string(tier) + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limiters[lookup]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter, spec
	}

	// Token bucket: full burst up front, refilled evenly over the window.
	interval := spec.window / time.Duration(spec.limit)
	limiter := rate.NewLimiter(rate.Every(interval), spec.limit)
	s.limiters[lookup] = &limiterEntry{limiter: limiter, lastSeen: time.Now()}
	return limiter, spec
}

func (s *limiterStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *limiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	const ttl = 90 * time.Minute
	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > ttl {
			delete(s.limiters, key)
		}
	}
}

func (s *limiterStore) Stop() {
	close(s.stopCleanup)
}

// clientKey identifies the client for limiting. Forwarding headers are only
// trusted when the direct peer is inside a configured proxy CIDR, otherwise
// a client could rotate X-Forwarded-For to dodge the limiter.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
				return strings.TrimSpace(first)
			}
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}
	return remoteIP
}

func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	if len(trustedCIDRs) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range trustedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}
