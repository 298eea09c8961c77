package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service implements registration, login and profile editing.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
	logger *zap.Logger
}

// NewService creates the auth service.
func NewService(store UserStore, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account. Returns ErrEmailTaken when the email is
// already registered.
func (s *Service) Register(ctx context.Context, email, firstName, lastName, password string) (*User, error) {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		HashedPassword: string(hash),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("email", email))
	return u, nil
}

// Login verifies credentials and issues a bearer token with the email
// as subject. Unknown email and wrong password both come back as
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		User:        *u,
	}, nil
}

// EditUser applies a profile update after verifying the current
// password. A failed password check changes nothing.
func (s *Service) EditUser(ctx context.Context, p EditParams) error {
	u, err := s.store.FindByEmail(ctx, p.Email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(p.CurrentPassword)) != nil {
		return ErrWrongPassword
	}

	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
	if p.LastName != "" {
		u.LastName = p.LastName
	}
	if p.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		u.HashedPassword = string(hash)
	}

	if err := s.store.Update(ctx, p.Email, u); err != nil {
		return err
	}

	s.logger.Info("user updated", zap.String("email", p.Email))
	return nil
}
