package service

import (
	"context"
	"strings"

	"socialsphere/internal/models"
	"socialsphere/internal/repository"
)

type ProfileService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

// UpdateProfileInput holds the editable profile fields. Empty fields keep
// the current value.
type UpdateProfileInput struct {
	Name       string
	Bio        string
	Avatar     string
	CoverPhoto string
}

func NewProfileService(users repository.UserRepository, sessions repository.SessionRepository) *ProfileService {
	return &ProfileService{users: users, sessions: sessions}
}

func (s *ProfileService) Profile(ctx context.Context) (*models.User, error) {
	_, user, err := requireUser(ctx, s.sessions)
	return user, err
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}

	updated := *user
	if v := strings.TrimSpace(in.Name); v != "" {
		updated.Name = v
	}
	if v := strings.TrimSpace(in.Bio); v != "" {
		updated.Bio = v
	}
	if v := strings.TrimSpace(in.Avatar); v != "" {
		updated.Avatar = v
	}
	if v := strings.TrimSpace(in.CoverPhoto); v != "" {
		updated.CoverPhoto = v
	}

	if err := s.users.UpdateUser(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
