package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"socialsphere/internal/models"
	"socialsphere/internal/repository"
)

type GroupService struct {
	groups   repository.GroupRepository
	sessions repository.SessionRepository
}

type CreateGroupInput struct {
	Name        string
	Description string
	IsPrivate   bool
}

func NewGroupService(groups repository.GroupRepository, sessions repository.SessionRepository) *GroupService {
	return &GroupService{groups: groups, sessions: sessions}
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groups.ListGroups(ctx)
}

// CreateGroup creates a group with the current user as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Group name is required")
	}
	return s.groups.SaveGroup(ctx, models.Group{
		Name:        name,
		Description: in.Description,
		Cover:       fmt.Sprintf("https://picsum.photos/seed/%s/1000/300", url.PathEscape(name)),
		Members:     []string{user.ID},
		IsPrivate:   in.IsPrivate,
	})
}

func (s *GroupService) JoinGroup(ctx context.Context, groupID string) (*models.Group, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	return s.groups.JoinGroup(ctx, groupID, user.ID)
}
