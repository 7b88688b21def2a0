package auth

import (
	"context"
	"time"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/identity"
)

// Messages reported with 500 responses.
const (
	signupFailed = "Signup failed"
	loginFailed  = "Login failed"
)

// Session is the outcome of a successful signup or login.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Service issues tokens for registered and authenticated users.
type Service struct {
	ids    *identity.Service
	tokens *Tokens
}

// NewService wires identity checks to token issuance.
func NewService(ids *identity.Service, tokens *Tokens) *Service {
	return &Service{ids: ids, tokens: tokens}
}

// Signup registers a user and issues their first token.
func (s *Service) Signup(ctx context.Context, in identity.RegisterInput) (Session, error) {
	user, err := s.ids.Register(ctx, in)
	if err != nil {
		return Session{}, classify(err, signupFailed)
	}
	return s.issue(user, signupFailed)
}

// Login authenticates a user and issues a token with the same shape as Signup's.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, classify(err, loginFailed)
	}
	return s.issue(user, loginFailed)
}

func (s *Service) issue(user identity.User, failMsg string) (Session, error) {
	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, apperror.Internal(failMsg, err)
	}
	return Session{UserID: user.ID, Token: token, ExpiresAt: exp}, nil
}

// classify passes typed application errors through and wraps anything else
// as an internal error with a generic message.
func classify(err error, failMsg string) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}
	return apperror.Internal(failMsg, err)
}
