// ABOUTME: Tenant guard enforcing organization-level data isolation
// ABOUTME: Deny-by-default comparison of principal tenant vs resource tenant

package auth

import (
	"errors"
)

// ErrUnauthorized is the single outcome for every tenant-guard denial.
// It is deliberately generic: callers surface it exactly like a not-found
// result, so a foreign-tenant probe cannot learn whether a resource exists.
var ErrUnauthorized = errors.New("unauthorized")

// CheckTenant decides whether the principal may touch a resource owned by
// resourceTenantID. Allow requires the principal to be bound to a tenant AND
// that tenant to equal the resource's. Absence of either side denies; there
// is no global bypass.
func CheckTenant(p *Principal, resourceTenantID string) error {
	if p == nil {
		return ErrUnauthorized
	}
	if p.TenantID == "" || resourceTenantID == "" {
		return ErrUnauthorized
	}
	if p.TenantID != resourceTenantID {
		return ErrUnauthorized
	}
	return nil
}
