package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/auth"
	"github.com/buildercircle/server/internal/domain/admins"
)

type authKey string

const claimsKey authKey = "adminClaims"

// ClaimsFromContext returns the verified admin claims, if the request was
// authenticated.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// AdminDirectory resolves administrator accounts during request
// authentication.
type AdminDirectory interface {
	GetByID(ctx context.Context, id string) (*admins.Admin, error)
}

// RequireAdmin rejects requests without a valid bearer token. Expired
// tokens get a distinct code so clients can trigger a re-login instead of
// treating it as tampering. The token's subject must still resolve to an
// account: a deleted admin holding an unexpired token is turned away.
func RequireAdmin(manager *auth.Manager, directory AdminDirectory, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeAuthRequired,
					"authorization required", nil, env)
				return
			}

			claims, err := manager.Verify(token)
			if err != nil {
				code := respond.CodeInvalidToken
				message := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					code = respond.CodeTokenExpired
					message = "token expired"
				}
				respond.Error(w, r, http.StatusUnauthorized, code, message, err, env)
				return
			}

			admin, err := directory.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, admins.ErrNotFound) {
					respond.Error(w, r, http.StatusUnauthorized, respond.CodeAdminNotFound,
						"admin account no longer exists", err, env)
					return
				}
				respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternal,
					"internal server error", err, env)
				return
			}
			// Roles can change after a token is minted; the stored role wins.
			claims.Role = admin.Role

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAdmin attaches claims when a valid token is present but lets
// anonymous requests through; handlers widen their responses for admins.
func OptionalAdmin(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, err := auth.TokenFromHeader(r.Header.Get("Authorization")); err == nil {
				if claims, err := manager.Verify(token); err == nil {
					ctx := context.WithValue(r.Context(), claimsKey, claims)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route on the authenticated admin's role. It must run
// after RequireAdmin.
func RequireRole(env string, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeAuthRequired,
					"authorization required", nil, env)
				return
			}
			if !admins.RoleAllowed(claims.Role, allowed) {
				respond.Error(w, r, http.StatusForbidden, respond.CodeForbidden,
					"insufficient role", nil, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
