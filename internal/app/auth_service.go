// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"blueprint/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Session is the bearer-token envelope handed to clients after registration
// or login.
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// AuthService handles registration, login and token authentication.
type AuthService struct {
	users  domain.UserRepository
	tokens *TokenIssuer
	ttl    time.Duration
	cost   int
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, tokens *TokenIssuer, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:  users,
		tokens: tokens,
		ttl:    DefaultTokenTTL,
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword returns a salted bcrypt hash of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a user and returns a session for it.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, invalid("Email already registered")
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil, invalid("Email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.newSession(user)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !VerifyPassword(password, user.PasswordHash) {
		return nil, &AuthError{Kind: AuthInvalidCredentials}
	}
	return s.newSession(user)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, &AuthError{Kind: AuthUnknownSubject}
	}
	return user, nil
}

// LoginWithIdentity issues a session for a user already authenticated by an
// identity provider, creating the user on first sight. Provisioned users
// have no password and can only sign in through the provider.
func (s *AuthService) LoginWithIdentity(ctx context.Context, email, username string) (*Session, error) {
	if email == "" {
		return nil, invalid("identity has no email")
	}
	if username == "" {
		username = email
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		user, err = s.users.CreateUser(ctx, domain.User{
			ID:        uuid.NewString(),
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		})
		if errors.Is(err, domain.ErrEmailTaken) {
			// Lost a race with a concurrent first login.
			user, err = s.users.GetUserByEmail(ctx, email)
		}
		if err != nil {
			return nil, fmt.Errorf("provision user: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("provision user: %s vanished", email)
		}
	}
	return s.newSession(user)
}

func (s *AuthService) newSession(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
