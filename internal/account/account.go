// ABOUTME: Signup, signin and organization-switch flows minting session tokens
// ABOUTME: The only place where credential-store lookups and password checks happen

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plotline/plotline/internal/auth"
	"github.com/plotline/plotline/internal/store"
)

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8

// Flow errors. ErrInvalidCredentials deliberately covers both unknown email
// and wrong password so a signin probe cannot enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account deactivated")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSlugTaken          = errors.New("organization slug already taken")
	ErrNotOrgMember       = errors.New("not a member of this organization")
)

// slugPattern matches lowercase alphanumeric segments joined by single hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// TokenIssuer mints session tokens. Satisfied by *auth.Gateway.
type TokenIssuer interface {
	IssueSession(subjectID, email, tenantID string, role auth.Role, ttl time.Duration) (string, error)
}

// SignupInput is the input to Signup. Organization fields are optional; when
// both are present a new organization is created and the user becomes its
// first admin.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	OrgName   string
	OrgSlug   string
}

// AuthResult is the outcome of a successful signup, signin or switch: the
// minted session token plus the user it identifies.
type AuthResult struct {
	Token string
	User  *store.User
}

// Service implements the account flows on top of the credential store, the
// password hasher and the auth gateway's token issuance.
type Service struct {
	store  store.Store
	hasher PasswordHasher
	issuer TokenIssuer
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates an account service. ttl is the session token lifetime.
func NewService(s store.Store, hasher PasswordHasher, issuer TokenIssuer, ttl time.Duration) *Service {
	return &Service{
		store:  s,
		hasher: hasher,
		issuer: issuer,
		ttl:    ttl,
		logger: slog.Default().With("component", "account"),
	}
}

// Signup registers a new user, optionally creating their organization, and
// mints their first session token.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, errors.New("first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return nil, errors.New("last name is required")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	var orgID string
	role := auth.RoleMember
	if input.OrgName != "" && input.OrgSlug != "" {
		if !slugPattern.MatchString(input.OrgSlug) {
			return nil, errors.New("invalid organization slug format")
		}
		org := &store.Organization{
			ID:           uuid.New().String(),
			Name:         input.OrgName,
			Slug:         input.OrgSlug,
			ContactEmail: email,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.store.CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrDuplicateSlug) {
				return nil, ErrSlugTaken
			}
			return nil, fmt.Errorf("creating organization: %w", err)
		}
		orgID = org.ID
		role = auth.RoleAdmin // first user of an organization administers it
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		ID:           uuid.New().String(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		PasswordHash: hash,
		OrgID:        orgID,
		Role:         string(role),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issuer.IssueSession(user.ID, user.Email, user.OrgID, role, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID, "org_id", orgID)
	return &AuthResult{Token: token, User: user}, nil
}

// Signin authenticates an email/password pair and mints a session token.
// Unknown email and wrong password fail identically.
func (s *Service) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Warn("signin rejected", "user_id", user.ID, "reason", "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.store.SetLastLogin(ctx, user.ID, now); err != nil {
		// Best effort; a failed bookkeeping update must not block signin
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	token, err := s.issuer.IssueSession(user.ID, user.Email, user.OrgID, auth.Role(user.Role), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// SwitchOrganization re-mints the caller's session bound to orgID after
// verifying membership. A user can only switch into the organization their
// record belongs to; the denial is generic so foreign org IDs learn nothing.
func (s *Service) SwitchOrganization(ctx context.Context, userID, orgID string) (*AuthResult, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}

	if _, err := s.store.GetOrganization(ctx, orgID); err != nil {
		if errors.Is(err, store.ErrOrgNotFound) {
			return nil, ErrNotOrgMember
		}
		return nil, fmt.Errorf("looking up organization: %w", err)
	}
	if user.OrgID != orgID {
		return nil, ErrNotOrgMember
	}

	token, err := s.issuer.IssueSession(user.ID, user.Email, orgID, auth.Role(user.Role), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	s.logger.Info("organization switched", "user_id", user.ID, "org_id", orgID)
	return &AuthResult{Token: token, User: user}, nil
}

// normalizeEmail lowercases and validates an email address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.New("valid email is required")
	}
	return email, nil
}
