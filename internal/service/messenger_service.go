package service

import (
	"context"
	"strings"

	"socialsphere/internal/models"
	"socialsphere/internal/repository"
)

type MessengerService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	sessions repository.SessionRepository
}

func NewMessengerService(users repository.UserRepository, messages repository.MessageRepository, sessions repository.SessionRepository) *MessengerService {
	return &MessengerService{users: users, messages: messages, sessions: sessions}
}

// Contacts lists everyone except the current user.
func (s *MessengerService) Contacts(ctx context.Context) ([]models.User, error) {
	ctx, me, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	contacts := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != me.ID {
			contacts = append(contacts, u)
		}
	}
	return contacts, nil
}

func (s *MessengerService) Conversation(ctx context.Context, withUserID string) ([]models.Message, error) {
	ctx, me, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, me.ID, withUserID)
}

// Send delivers text to an existing user.
func (s *MessengerService) Send(ctx context.Context, toUserID, text string) (*models.Message, error) {
	ctx, me, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Message text is required")
	}
	if _, err := s.users.GetUser(ctx, toUserID); err != nil {
		return nil, err
	}
	return s.messages.SendMessage(ctx, models.Message{
		SenderID:   me.ID,
		ReceiverID: toUserID,
		Text:       text,
	})
}
