// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu          sync.RWMutex
	users       map[string]*User         // keyed by user ID
	usersByMail map[string]string        // keyed by email -> user ID
	orgs        map[string]*Organization // keyed by org ID
	orgsBySlug  map[string]string        // keyed by slug -> org ID
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:       make(map[string]*User),
		usersByMail: make(map[string]string),
		orgs:        make(map[string]*Organization),
		orgsBySlug:  make(map[string]string),
	}
}

// CreateUser stores a new user record.
func (m *MockStore) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByMail[u.Email]; ok {
		return ErrDuplicateEmail
	}

	// Make a copy to avoid external modification
	cp := *u
	m.users[cp.ID] = &cp
	m.usersByMail[cp.Email] = cp.ID
	return nil
}

// FindUserByEmail retrieves a user by email.
func (m *MockStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByMail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

// FindUserByID retrieves a user by ID.
func (m *MockStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// SetLastLogin records the time of a successful signin.
func (m *MockStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	t := at
	u.LastLoginAt = &t
	return nil
}

// CreateOrganization stores a new organization.
func (m *MockStore) CreateOrganization(ctx context.Context, o *Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orgsBySlug[o.Slug]; ok {
		return ErrDuplicateSlug
	}

	cp := *o
	m.orgs[cp.ID] = &cp
	m.orgsBySlug[cp.Slug] = cp.ID
	return nil
}

// GetOrganization retrieves an organization by ID.
func (m *MockStore) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orgs[id]
	if !ok {
		return nil, ErrOrgNotFound
	}
	cp := *o
	return &cp, nil
}

// GetOrganizationBySlug retrieves an organization by slug.
func (m *MockStore) GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.orgsBySlug[slug]
	if !ok {
		return nil, ErrOrgNotFound
	}
	cp := *m.orgs[id]
	return &cp, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
