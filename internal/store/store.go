// ABOUTME: Store interfaces and record types for plotline credential persistence
// ABOUTME: Defines User and Organization records consumed by the auth core

package store

import (
	"context"
	"errors"
	"time"
)

// Store errors.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrOrgNotFound    = errors.New("organization not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateSlug  = errors.New("organization slug already taken")
)

// User is a principal record as persisted. PasswordHash is an opaque value
// produced by the account package's hasher; the store never inspects it.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // normalized lowercase, unique
	PasswordHash string
	OrgID        string // owning organization; empty if none
	Role         string // "admin", "manager" or "member"
	Active       bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Organization is a tenant: the unit of data isolation.
type Organization struct {
	ID           string
	Name         string
	Slug         string // unique, URL-safe
	ContactEmail string
	CreatedAt    time.Time
}

// UserStore is the credential store adapter consumed by the auth flows.
// Lookups honor context cancellation; a cancelled request must not produce
// a partially resolved identity.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}

// OrgStore provides organization lookups for signup and tenant switching.
type OrgStore interface {
	CreateOrganization(ctx context.Context, o *Organization) error
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error)
}

// Store combines the credential and organization stores.
type Store interface {
	UserStore
	OrgStore
	Close() error
}
