package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/validation"
)

var (
	// ErrEmailExists is the conflict reported to a signup with a known email.
	ErrEmailExists = apperror.Conflict("Email already exists")
	// ErrInvalidCredentials is the single answer to every failed login, so
	// callers cannot discover which emails are registered.
	ErrInvalidCredentials = apperror.Auth("Invalid email or password")
	// ErrInvalidSignup rejects a malformed signup form.
	ErrInvalidSignup = apperror.Validation("Invalid signup data")
)

// PasswordHasher hashes and verifies passwords with a salted one-way function.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// Service manages the credential lifecycle.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	validate *validation.Validator
	now      func() time.Time
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, validate: validation.New(), now: time.Now}
}

// Register validates the form and stores a new credential with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validate.Struct(in, ErrInvalidSignup.Message); err != nil {
		return User{}, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies an email and password pair. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Profile returns the public view of the user with id.
func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, apperror.NotFound("user not found")
	}
	if err != nil {
		return Profile{}, err
	}
	return user.Profile(), nil
}
