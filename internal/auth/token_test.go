// ABOUTME: Unit tests for the JWT token codec
// ABOUTME: Covers round-trips, wrong secrets, expiry, and unsafe decoding

package auth

import (
	"errors"
	"testing"
	"time"
)

// tokenTestSecret is a 32-byte secret that meets MinSecretLength requirement.
var tokenTestSecret = []byte("token-codec-test-secret-32bytes!")

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := NewTokenCodec(tokenTestSecret)
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}

	token, err := codec.Issue("u1", "alice@example.com", "org1", RoleMember, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.Subject != "u1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "u1")
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "alice@example.com")
	}
	if claims.TenantID != "org1" {
		t.Errorf("TenantID = %q, want %q", claims.TenantID, "org1")
	}
	if claims.Role != RoleMember {
		t.Errorf("Role = %q, want %q", claims.Role, RoleMember)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("expected issued-at and expiry timestamps")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("expiry - issued = %v, want %v", got, time.Hour)
	}
}

func TestTokenCodec_RoundTrip_NoTenant(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)

	token, err := codec.Issue("u2", "bob@example.com", "", RoleMember, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.TenantID != "" {
		t.Errorf("TenantID = %q, want empty", claims.TenantID)
	}
}

func TestTokenCodec_ShortSecret(t *testing.T) {
	if _, err := NewTokenCodec([]byte("too-short")); err == nil {
		t.Error("NewTokenCodec() should reject a short secret")
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)
	other, _ := NewTokenCodec([]byte("another-different-secret-32bytes"))

	token, err := other.Issue("u1", "alice@example.com", "org1", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = codec.Verify(token)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify() error = %v, want ErrBadSignature", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			if !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Verify() error = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)

	// Issue a token that expired an hour ago
	token, err := codec.Issue("u1", "alice@example.com", "org1", RoleMember, -time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = codec.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestTokenCodec_VerifyIdempotent(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)

	token, _ := codec.Issue("u1", "alice@example.com", "org1", RoleManager, time.Hour)

	first, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("first Verify() error = %v", err)
	}
	second, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("second Verify() error = %v", err)
	}

	if *first.ExpiresAt != *second.ExpiresAt || first.Subject != second.Subject || first.Role != second.Role {
		t.Errorf("repeated Verify() disagreed: %+v vs %+v", first, second)
	}
}

func TestTokenCodec_DecodeUnsafe(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)
	foreign, _ := NewTokenCodec([]byte("another-different-secret-32bytes"))

	// DecodeUnsafe reads the payload even when the signature is foreign
	token, _ := foreign.Issue("u9", "eve@example.com", "org9", RoleAdmin, time.Hour)
	claims, ok := codec.DecodeUnsafe(token)
	if !ok {
		t.Fatal("DecodeUnsafe() failed on a well-formed token")
	}
	if claims.Subject != "u9" || claims.TenantID != "org9" {
		t.Errorf("DecodeUnsafe() claims = %+v", claims)
	}

	if _, ok := codec.DecodeUnsafe("garbage"); ok {
		t.Error("DecodeUnsafe() should fail on garbage")
	}
}

func TestTokenCodec_InvalidIssueInputs(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)

	if _, err := codec.Issue("", "a@b.com", "", RoleMember, time.Hour); err == nil {
		t.Error("Issue() should reject an empty subject")
	}
	if _, err := codec.Issue("u1", "a@b.com", "", Role("banana"), time.Hour); err == nil {
		t.Error("Issue() should reject an unknown role")
	}
}

func TestSessionClaims_Principal(t *testing.T) {
	codec, _ := NewTokenCodec(tokenTestSecret)
	token, _ := codec.Issue("u1", "alice@example.com", "org1", RoleMember, time.Hour)
	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	p := claims.Principal()
	if p.SubjectID != "u1" || p.Email != "alice@example.com" || p.TenantID != "org1" || p.Role != RoleMember {
		t.Errorf("Principal() = %+v", p)
	}
	if p.IssuedAt.IsZero() || p.ExpiresAt.IsZero() {
		t.Error("Principal() should carry token timestamps")
	}
}
