package service

import (
	"context"
	"strings"

	"socialsphere/internal/models"
	"socialsphere/internal/repository"
)

const defaultSignupName = "New User"

type AuthService struct {
	sessions repository.SessionRepository
}

func NewAuthService(sessions repository.SessionRepository) *AuthService {
	return &AuthService{sessions: sessions}
}

// CurrentUser returns nil when nobody is logged in.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.sessions.GetCurrentUser(ctx)
}

// LoginOrSignup logs in the first user with email, or signs up a new one
// when none exists. created reports which path was taken.
func (s *AuthService) LoginOrSignup(ctx context.Context, name, email string) (user *models.User, created bool, err error) {
	if strings.TrimSpace(email) == "" {
		return nil, false, models.NewValidationError("Email is required")
	}

	user, err = s.sessions.Login(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !models.IsNotFound(err) {
		return nil, false, err
	}

	if strings.TrimSpace(name) == "" {
		name = defaultSignupName
	}
	user, err = s.sessions.Signup(ctx, name, email)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}
