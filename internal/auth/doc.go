// Package auth provides authentication and authorization for plotline.
//
// # Session Tokens
//
// Users and API clients authenticate with JWT session tokens signed with
// HS256 using the configured jwt_secret. A token carries the subject ID,
// email, organization ID (optional) and role, plus issued-at and expiry
// timestamps. There is no revocation list: tokens are short-lived and
// rotated proactively near expiry, and rotating the secret invalidates
// every outstanding token at once.
//
// # Resolution
//
// The SessionResolver turns an inbound credential into a Principal:
//
//   - no credential: anonymous (nil Principal, nil error)
//   - expired token: rejected with ErrTokenExpired
//   - malformed or badly signed token: rejected with ErrTokenInvalid
//   - verified token: a Principal, final for the rest of the request
//
// A dev-only mode reads identity from X-User-* headers instead. It is a
// separate code path selected exclusively by configuration and never falls
// back from or to token verification.
//
// # Authorization
//
// Two independent checks guard every resource operation:
//
//   - CheckTenant: the principal's organization must equal the resource's.
//     Every other combination denies with the generic ErrUnauthorized,
//     which boundaries surface exactly like not-found.
//   - RequireRole: the principal's role must be in the operation's allowed
//     set; an empty set requires only authentication.
//
// Both must pass when both are declared; passing one never skips the other.
//
// # Gateway
//
// The Gateway composes the codec, resolver and guards behind one entry
// point and is the sole reader of the signing secret:
//
//	gw, err := auth.NewGateway(secret, auth.Options{})
//	subjectID, err := gw.RequireAuthenticated(ctx)
//	err = gw.RequireRole(ctx, auth.RoleAdmin)
//	err = gw.RequireTenantMatch(ctx, project.OrgID)
//	token, err := gw.IssueSession(userID, email, orgID, auth.RoleMember, ttl)
//
// HTTP middleware and gRPC interceptors adapt the same resolution path to
// both transports.
package auth
