package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"helsejournal/internal/auth"
	"helsejournal/internal/domain"
)

type userStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type tokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService handles login and account management for the single
// local account.
type AuthService struct {
	users  userStore
	tokens tokenIssuer
	logger *slog.Logger
}

func NewAuthService(users userStore, tokens tokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Bootstrap creates the default account on first start if no account
// with the configured username exists yet.
func (s *AuthService) Bootstrap(ctx context.Context, username, password string) error {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check default account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Language:     "no",
		Theme:        "light",
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent bootstrap; the account exists.
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create default account: %w", err)
	}

	s.logger.Info("created default account", "username", username)
	return nil
}

// Login checks credentials and returns a signed access token. Unknown
// username and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return "", nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

type UpdateProfileRequest struct {
	Email    *string
	FullName *string
	Language *string
	Theme    *string
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Language, validation.In("no", "en")),
		validation.Field(&r.Theme, validation.In("light", "dark")),
	)
}

// UpdateProfile applies a partial profile edit.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = req.Email
	}
	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before replacing it.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := validation.Validate(next, validation.Required, validation.Length(8, 128)); err != nil {
		return fmt.Errorf("%w: new password: %s", domain.ErrValidation, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("current password is wrong: %w", domain.ErrUnauthorized)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	return s.users.Update(ctx, user)
}
