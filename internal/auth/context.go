// ABOUTME: Request-context propagation for the resolved Principal and tenant scope
// ABOUTME: Provides WithPrincipal/FromContext for carrying identity through handlers

package auth

import (
	"context"
)

// principalKey is the key type for storing a Principal in context.Context.
type principalKey struct{}

// tenantKey is the key type for storing a TenantContext in context.Context.
type tenantKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if the
// request is anonymous or unresolved.
func FromContext(ctx context.Context) *Principal {
	val := ctx.Value(principalKey{})
	if val == nil {
		return nil
	}
	p, ok := val.(*Principal)
	if !ok {
		return nil
	}
	return p
}

// MustFromContext retrieves the Principal from the context, panicking if not
// present. For handlers that sit behind the strict middleware/interceptor.
func MustFromContext(ctx context.Context) *Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("auth: Principal not found in context")
	}
	return p
}

// WithTenant returns a new context with the TenantContext attached.
func WithTenant(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantKey{}, tc)
}

// TenantFromContext retrieves the TenantContext from the context, returning
// nil if no tenant scope was derived for this request.
func TenantFromContext(ctx context.Context) *TenantContext {
	val := ctx.Value(tenantKey{})
	if val == nil {
		return nil
	}
	tc, ok := val.(*TenantContext)
	if !ok {
		return nil
	}
	return tc
}
