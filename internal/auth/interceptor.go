// ABOUTME: gRPC interceptors authenticating requests from metadata
// ABOUTME: Mirrors the HTTP middleware so both transports share one resolution path

package auth

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// logAuthFailureGRPC logs an authentication failure with structured context.
func logAuthFailureGRPC(logger *slog.Logger, ctx context.Context, reason string, attrs ...any) {
	if logger == nil {
		return
	}
	baseAttrs := []any{"reason", reason}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		baseAttrs = append(baseAttrs, "peer_addr", p.Addr.String())
	}
	baseAttrs = append(baseAttrs, attrs...)
	logger.Warn("auth failure", baseAttrs...)
}

// UnaryInterceptor returns a gRPC unary interceptor that authenticates
// requests. Anonymous requests are rejected: every RPC behind it requires a
// verified principal.
func (g *Gateway) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, err := g.authenticateGRPC(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamInterceptor returns a gRPC stream interceptor that authenticates
// requests.
func (g *Gateway) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, err := g.authenticateGRPC(ss.Context())
		if err != nil {
			return err
		}
		wrapped := &wrappedServerStream{ServerStream: ss, ctx: ctx}
		return handler(srv, wrapped)
	}
}

// NoAuthUnaryInterceptor returns a unary interceptor that injects a fixed
// local principal when authentication is disabled, so handlers calling
// MustFromContext do not panic in dev deployments.
func NoAuthUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = WithPrincipal(ctx, devPrincipal())
		return handler(ctx, req)
	}
}

// NoAuthStreamInterceptor returns a stream interceptor that injects a fixed
// local principal when authentication is disabled.
func NoAuthStreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		wrapped := &wrappedServerStream{
			ServerStream: ss,
			ctx:          WithPrincipal(ss.Context(), devPrincipal()),
		}
		return handler(srv, wrapped)
	}
}

// devPrincipal is the identity injected by the no-auth interceptors.
func devPrincipal() *Principal {
	return &Principal{
		SubjectID: "local",
		Email:     "local@localhost",
		Role:      RoleAdmin,
	}
}

// wrappedServerStream wraps a grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// authenticateGRPC resolves the bearer credential from incoming metadata and
// attaches the principal and tenant scope to the context.
func (g *Gateway) authenticateGRPC(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		logAuthFailureGRPC(g.logger, ctx, "missing_metadata")
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	var authHeader string
	if vals := md.Get("authorization"); len(vals) > 0 {
		authHeader = vals[0]
	}

	p, err := g.resolver.ResolveToken(authHeader)
	if err != nil {
		logAuthFailureGRPC(g.logger, ctx, "token_rejected", "error", err.Error())
		if errors.Is(err, ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	if p == nil {
		logAuthFailureGRPC(g.logger, ctx, "missing_credential")
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	ctx = WithPrincipal(ctx, p)
	if p.TenantID != "" {
		ctx = WithTenant(ctx, &TenantContext{TenantID: p.TenantID})
	} else if vals := md.Get("x-organization-id"); len(vals) > 0 && vals[0] != "" {
		ctx = WithTenant(ctx, &TenantContext{TenantID: vals[0]})
	}
	return ctx, nil
}

// GRPCStatusFromError maps an auth error to the gRPC status handlers should
// return. ErrUnauthorized maps to NotFound so cross-tenant probes cannot
// detect a resource's existence.
func GRPCStatusFromError(err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenInvalid):
		return status.Error(codes.Unauthenticated, "authentication required")
	case errors.Is(err, ErrInsufficientRole):
		return status.Error(codes.PermissionDenied, "insufficient permissions")
	case errors.Is(err, ErrUnauthorized):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
