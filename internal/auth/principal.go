// ABOUTME: Principal and Role types representing a resolved identity
// ABOUTME: A Principal is immutable for the lifetime of one request

package auth

import (
	"time"
)

// Role is one of the closed set of roles a user can hold within an organization.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// ValidRoles lists all valid role names.
var ValidRoles = []Role{RoleAdmin, RoleManager, RoleMember}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// Principal is the authenticated identity resolved for the current request.
// It is built once from verified token claims (or from trusted headers in
// dev mode) and never mutated afterwards; the next request re-resolves.
type Principal struct {
	SubjectID string // stable, unique user identifier
	Email     string // normalized lowercase
	TenantID  string // owning organization; empty if the user has none
	Role      Role
	IssuedAt  time.Time // carried from the token
	ExpiresAt time.Time // carried from the token
}

// TenantContext is the per-request tenant scoping value. It is derived from
// the principal's organization, or from the explicit tenant-selection header
// when the principal carries none. It is advisory context for callers that
// need an organization scope; it is never an authorization credential.
type TenantContext struct {
	TenantID string
}
