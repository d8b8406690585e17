// ABOUTME: JWT token codec for issuing and verifying session credentials
// ABOUTME: Uses HS256 signing with a configurable secret

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted signing secret length in bytes.
// HS256 secrets shorter than the hash output weaken the signature.
const MinSecretLength = 32

// Token errors. Malformed and BadSignature indicate potential tampering;
// Expired is the only kind a client may recover from by re-authenticating.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrExpiredToken   = errors.New("token expired")
	ErrMissingClaim   = errors.New("missing required claim")
)

// SessionClaims is the payload carried by a session token. The fixed struct
// keeps the serialized field order stable, so signing and verification always
// cover the same payload bytes.
type SessionClaims struct {
	Email    string `json:"email"`
	TenantID string `json:"org_id,omitempty"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec creates and parses signed, time-bounded session tokens.
// It is the only type in the process that holds the signing secret.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec with the given signing secret.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	return &TokenCodec{secret: secret}, nil
}

// Issue creates a signed token for the given identity with issued-at now and
// expiry now + ttl. Timestamps are whole seconds since epoch.
func (c *TokenCodec) Issue(subjectID, email, tenantID string, role Role, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", role)
	}

	now := time.Now().Truncate(time.Second)
	claims := &SessionClaims{
		Email:    email,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the signature and expiry of a token and returns its
// claims. Failure modes are distinguishable via errors.Is: ErrExpiredToken,
// ErrBadSignature, ErrMalformedToken. Verification is pure and safe to call
// concurrently on the same token.
func (c *TokenCodec) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Only HS256 tokens are ever issued; reject anything else up front
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrBadSignature
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}

	return claims, nil
}

// DecodeUnsafe parses the payload of a token without verifying its
// signature. It exists solely so callers can decide whether a token is worth
// proactively refreshing; its output must never be used to authorize
// anything.
func (c *TokenCodec) DecodeUnsafe(tokenString string) (*SessionClaims, bool) {
	claims := &SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Principal builds an immutable Principal from verified claims.
func (cl *SessionClaims) Principal() *Principal {
	p := &Principal{
		SubjectID: cl.Subject,
		Email:     cl.Email,
		TenantID:  cl.TenantID,
		Role:      cl.Role,
	}
	if cl.IssuedAt != nil {
		p.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		p.ExpiresAt = cl.ExpiresAt.Time
	}
	return p
}
