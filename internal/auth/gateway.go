// ABOUTME: Auth gateway composing session resolution, tenant guard and role policy
// ABOUTME: Single entry point used by resource services; sole reader of the signing secret

package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DefaultRefreshWindow is how close to expiry a token must be before the
// gateway offers a proactively re-minted replacement.
const DefaultRefreshWindow = time.Hour

// Options configures a Gateway.
type Options struct {
	// HeaderIdentity selects the dev-only header-derived identity resolver
	// instead of token verification. Must stay off in anything resembling a
	// deployment.
	HeaderIdentity bool

	// RefreshWindow overrides DefaultRefreshWindow.
	RefreshWindow time.Duration

	// Logger receives auth failure events. Defaults to slog.Default.
	Logger *slog.Logger
}

// Gateway is the single entry point the resource services use for
// authentication and authorization decisions. It holds no mutable state
// beyond the signing secret and configuration, both read-only after
// construction, so one Gateway serves all requests concurrently.
type Gateway struct {
	codec         *TokenCodec
	resolver      *SessionResolver
	refreshWindow time.Duration
	logger        *slog.Logger
}

// NewGateway creates a gateway with the given signing secret.
func NewGateway(secret []byte, opts Options) (*Gateway, error) {
	codec, err := NewTokenCodec(secret)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "auth")
	}
	refreshWindow := opts.RefreshWindow
	if refreshWindow <= 0 {
		refreshWindow = DefaultRefreshWindow
	}

	return &Gateway{
		codec:         codec,
		resolver:      NewSessionResolver(codec, opts.HeaderIdentity),
		refreshWindow: refreshWindow,
		logger:        logger,
	}, nil
}

// ResolvePrincipal resolves the request's credential into a Principal.
// (nil, nil) means anonymous; a non-nil error means a credential was
// presented and rejected.
func (g *Gateway) ResolvePrincipal(req *http.Request) (*Principal, error) {
	p, err := g.resolver.Resolve(req)
	if err != nil {
		g.logAuthFailure(req.RemoteAddr, err)
		return nil, err
	}
	return p, nil
}

// RequireAuthenticated returns the subject ID of the authenticated
// principal, or ErrUnauthenticated for an anonymous request.
func (g *Gateway) RequireAuthenticated(ctx context.Context) (string, error) {
	p := FromContext(ctx)
	if p == nil {
		return "", ErrUnauthenticated
	}
	return p.SubjectID, nil
}

// RequireRole enforces that the principal holds one of the allowed roles.
// An empty role list requires only authentication.
func (g *Gateway) RequireRole(ctx context.Context, roles ...Role) error {
	return RequireRole(FromContext(ctx), roles...)
}

// RequireTenantMatch enforces that the principal belongs to the tenant that
// owns the resource. The denial is the generic ErrUnauthorized, which
// callers must surface identically to a not-found result.
func (g *Gateway) RequireTenantMatch(ctx context.Context, resourceTenantID string) error {
	return CheckTenant(FromContext(ctx), resourceTenantID)
}

// IssueSession mints a new session token. Used by the signup, signin and
// organization-switch flows.
func (g *Gateway) IssueSession(subjectID, email, tenantID string, role Role, ttl time.Duration) (string, error) {
	return g.codec.Issue(subjectID, email, tenantID, role, ttl)
}

// RefreshIfExpiring re-mints the token when it expires within the refresh
// window. The decision uses the unverified payload only; the replacement is
// minted from the caller's already-verified principal, never from the
// decoded claims.
func (g *Gateway) RefreshIfExpiring(token string, p *Principal, ttl time.Duration) (string, bool) {
	claims, ok := g.codec.DecodeUnsafe(token)
	if !ok || claims.ExpiresAt == nil || p == nil {
		return "", false
	}
	if time.Until(claims.ExpiresAt.Time) >= g.refreshWindow {
		return "", false
	}

	fresh, err := g.codec.Issue(p.SubjectID, p.Email, p.TenantID, p.Role, ttl)
	if err != nil {
		return "", false
	}
	return fresh, true
}

// Resolver exposes the underlying session resolver for transport adapters.
func (g *Gateway) Resolver() *SessionResolver {
	return g.resolver
}

// logAuthFailure records a rejected credential. The token itself is never
// logged.
func (g *Gateway) logAuthFailure(remoteAddr string, err error) {
	attrs := []any{"reason", err.Error()}
	if remoteAddr != "" {
		attrs = append(attrs, "remote_addr", remoteAddr)
	}
	g.logger.Warn("auth failure", attrs...)
}
