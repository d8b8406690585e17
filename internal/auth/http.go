// ABOUTME: HTTP middleware wiring the session resolver into request handling
// ABOUTME: Strict, optional and role-requiring variants plus proactive refresh

package auth

import (
	"errors"
	"net/http"
	"time"
)

// RefreshHeader carries a proactively re-minted token back to the client.
const RefreshHeader = "X-New-Token"

// Middleware returns a strict middleware: requests without a valid
// principal are rejected with 401. Expired and invalid tokens both reject;
// the body stays generic so verification detail never reaches the client.
func (g *Gateway) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := g.ResolvePrincipal(r)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			if p == nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			if tc := DeriveTenant(p, r); tc != nil {
				ctx = WithTenant(ctx, tc)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware attempts resolution but lets anonymous and rejected
// requests through without a principal. Handlers behind it decide per
// operation whether authentication is required.
func (g *Gateway) OptionalMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := g.ResolvePrincipal(r)
			if err != nil || p == nil {
				next.ServeHTTP(w, r) // continue as anonymous
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			if tc := DeriveTenant(p, r); tc != nil {
				ctx = WithTenant(ctx, tc)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoleMiddleware rejects requests whose principal lacks all of the
// allowed roles. Must be used after Middleware.
func (g *Gateway) RequireRoleMiddleware(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.RequireRole(r.Context(), roles...); err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RefreshMiddleware re-mints tokens that are close to expiry and hands the
// replacement back in the X-New-Token response header. Must be used after
// Middleware so the principal is already verified.
func (g *Gateway) RefreshMiddleware(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := FromContext(r.Context())
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if p != nil && errMsg == "" {
				if fresh, ok := g.RefreshIfExpiring(token, p, ttl); ok {
					w.Header().Set(RefreshHeader, fresh)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError maps an auth error to its HTTP status with a generic body.
// ErrUnauthorized maps to 404 so a foreign-tenant probe is indistinguishable
// from a missing resource.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrUnauthenticated):
		http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
	case errors.Is(err, ErrInsufficientRole):
		http.Error(w, `{"error":"insufficient permissions"}`, http.StatusForbidden)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	default:
		http.Error(w, `{"error":"authentication failed"}`, http.StatusUnauthorized)
	}
}
