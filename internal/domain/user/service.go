package user

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Sentinel errors for registration input validation.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is not valid")
	ErrPasswordRequired = errors.New("password is required")
)

// Service encapsulates user registration and authentication. Password
// hashing is delegated to the injected CredentialHasher.
type Service struct {
	users  Repository
	hasher CredentialHasher
}

// NewService creates a user Service.
func NewService(users Repository, hasher CredentialHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// NormalizeEmail maps an email to its canonical stored form. Uniqueness of
// emails is case-insensitive, so this runs before every write and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a normalized unique email and a hashed
// password. It returns ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return nil, ErrEmailInvalid
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// Authenticate verifies an email/password pair and returns the matching
// user. Lookup misses and bad passwords both map to ErrBadCredentials so
// callers cannot probe which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}
	if err := s.hasher.Verify(password, u.PasswordHash); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}
