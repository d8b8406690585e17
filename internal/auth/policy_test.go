// ABOUTME: Unit tests for the role policy engine
// ABOUTME: Covers role membership, empty role sets, and nil principals

package auth

import (
	"errors"
	"testing"
)

func TestRequireRole(t *testing.T) {
	member := &Principal{SubjectID: "u1", TenantID: "org1", Role: RoleMember}
	admin := &Principal{SubjectID: "u2", TenantID: "org1", Role: RoleAdmin}

	tests := []struct {
		name    string
		p       *Principal
		roles   []Role
		wantErr error
	}{
		{
			name:    "role in set allows",
			p:       member,
			roles:   []Role{RoleMember, RoleAdmin},
			wantErr: nil,
		},
		{
			name:    "role not in set denies",
			p:       member,
			roles:   []Role{RoleAdmin},
			wantErr: ErrInsufficientRole,
		},
		{
			name:    "manager not covered by admin",
			p:       admin,
			roles:   []Role{RoleManager},
			wantErr: ErrInsufficientRole,
		},
		{
			name:    "empty set requires authentication only",
			p:       member,
			roles:   nil,
			wantErr: nil,
		},
		{
			name:    "nil principal with roles",
			p:       nil,
			roles:   []Role{RoleMember},
			wantErr: ErrUnauthenticated,
		},
		{
			name:    "nil principal with empty set",
			p:       nil,
			roles:   nil,
			wantErr: ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.p, tt.roles...)
			if tt.wantErr == nil && err != nil {
				t.Errorf("RequireRole() = %v, want allow", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("RequireRole() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range ValidRoles {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Error("unknown role should be invalid")
	}
	if Role("").Valid() {
		t.Error("empty role should be invalid")
	}
}
