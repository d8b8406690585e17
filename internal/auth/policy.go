// ABOUTME: Role policy engine deciding allow/deny from a principal's role
// ABOUTME: Role checks and tenant checks are independent and compose conjunctively

package auth

import (
	"errors"
)

// Policy errors.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrInsufficientRole = errors.New("insufficient role")
)

// RequireRole allows iff the principal's role is in the allowed set. An
// empty set means the operation requires only authentication. A role check
// never substitutes for a tenant check; callers that declare both must pass
// both.
func RequireRole(p *Principal, roles ...Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return ErrInsufficientRole
}
