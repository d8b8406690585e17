// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/organization persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS organizations (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			slug          TEXT NOT NULL UNIQUE,
			contact_email TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			org_id        TEXT,
			role          TEXT NOT NULL,
			active        INTEGER NOT NULL DEFAULT 1,
			created_at    TEXT NOT NULL,
			last_login_at TEXT,
			FOREIGN KEY (org_id) REFERENCES organizations(id)
		);

		CREATE INDEX IF NOT EXISTS idx_users_org_id ON users(org_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser stores a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, org_id, role, active, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var orgID any
	if u.OrgID != "" {
		orgID = u.OrgID
	}
	var lastLogin any
	if u.LastLoginAt != nil {
		lastLogin = u.LastLoginAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, query,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		orgID,
		u.Role,
		boolToInt(u.Active),
		u.CreatedAt.UTC().Format(time.RFC3339),
		lastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}

	s.logger.Debug("created user", "user_id", u.ID, "org_id", u.OrgID)
	return nil
}

// FindUserByEmail retrieves a user by normalized email.
func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, org_id, role, active, created_at, last_login_at
		FROM users WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// FindUserByID retrieves a user by ID.
func (s *SQLiteStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, org_id, role, active, created_at, last_login_at
		FROM users WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// SetLastLogin records the time of a successful signin.
func (s *SQLiteStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login_at = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateOrganization stores a new organization.
func (s *SQLiteStore) CreateOrganization(ctx context.Context, o *Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, contact_email, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		o.ID,
		o.Name,
		o.Slug,
		o.ContactEmail,
		o.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("creating organization: %w", err)
	}

	s.logger.Debug("created organization", "org_id", o.ID, "slug", o.Slug)
	return nil
}

// GetOrganization retrieves an organization by ID.
func (s *SQLiteStore) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	query := `SELECT id, name, slug, contact_email, created_at FROM organizations WHERE id = ?`
	return s.scanOrg(s.db.QueryRowContext(ctx, query, id))
}

// GetOrganizationBySlug retrieves an organization by its unique slug.
func (s *SQLiteStore) GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	query := `SELECT id, name, slug, contact_email, created_at FROM organizations WHERE slug = ?`
	return s.scanOrg(s.db.QueryRowContext(ctx, query, slug))
}

// scanUser scans a single user row.
func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var u User
	var orgID, lastLogin sql.NullString
	var active int
	var createdAt string

	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &orgID, &u.Role, &active, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.OrgID = orgID.String
	u.Active = active != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = t
	}
	if lastLogin.Valid {
		if t, err := time.Parse(time.RFC3339, lastLogin.String); err == nil {
			u.LastLoginAt = &t
		}
	}
	return &u, nil
}

// scanOrg scans a single organization row.
func (s *SQLiteStore) scanOrg(row *sql.Row) (*Organization, error) {
	var o Organization
	var createdAt string

	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.ContactEmail, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrgNotFound
		}
		return nil, fmt.Errorf("scanning organization: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		o.CreatedAt = t
	}
	return &o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether the error is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
