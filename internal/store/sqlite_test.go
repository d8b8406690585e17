// ABOUTME: Tests for the SQLite credential store
// ABOUTME: Covers user/org CRUD, uniqueness constraints, and last-login updates

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func testUser(id, email, orgID string) *User {
	return &User{
		ID:           id,
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		OrgID:        orgID,
		Role:         "member",
		Active:       true,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_UserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	org := &Organization{
		ID:           "org-1",
		Name:         "Acme",
		Slug:         "acme",
		ContactEmail: "ops@acme.test",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateOrganization(ctx, org))

	u := testUser("u-1", "alice@acme.test", "org-1")
	require.NoError(t, s.CreateUser(ctx, u))

	byEmail, err := s.FindUserByEmail(ctx, "alice@acme.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)
	assert.Equal(t, "org-1", byEmail.OrgID)
	assert.True(t, byEmail.Active)
	assert.Nil(t, byEmail.LastLoginAt)

	byID, err := s.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, u.CreatedAt, byID.CreatedAt)
}

func TestSQLiteStore_UserWithoutOrg(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("u-2", "solo@example.test", "")))

	got, err := s.FindUserByID(ctx, "u-2")
	require.NoError(t, err)
	assert.Empty(t, got.OrgID)
}

func TestSQLiteStore_UserNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindUserByEmail(ctx, "ghost@example.test")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.FindUserByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("u-1", "dup@example.test", "")))
	err := s.CreateUser(ctx, testUser("u-2", "dup@example.test", ""))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSQLiteStore_SetLastLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("u-1", "alice@example.test", "")))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.SetLastLogin(ctx, "u-1", at))

	got, err := s.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, at, *got.LastLoginAt)

	assert.ErrorIs(t, s.SetLastLogin(ctx, "missing", at), ErrUserNotFound)
}

func TestSQLiteStore_OrganizationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	org := &Organization{
		ID:           "org-1",
		Name:         "Acme",
		Slug:         "acme",
		ContactEmail: "ops@acme.test",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateOrganization(ctx, org))

	byID, err := s.GetOrganization(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", byID.Slug)

	bySlug, err := s.GetOrganizationBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "org-1", bySlug.ID)

	_, err = s.GetOrganization(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrgNotFound)
}

func TestSQLiteStore_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	org := &Organization{ID: "org-1", Name: "Acme", Slug: "acme", ContactEmail: "a@b.test", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateOrganization(ctx, org))

	dup := &Organization{ID: "org-2", Name: "Other", Slug: "acme", ContactEmail: "c@d.test", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, s.CreateOrganization(ctx, dup), ErrDuplicateSlug)
}

// A cancelled request context aborts the lookup instead of returning a
// partially read record.
func TestSQLiteStore_ContextCancellation(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindUserByEmail(ctx, "alice@example.test")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
