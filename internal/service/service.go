// Package service holds the interaction rules of each view: who may do
// what, which defaults apply, and when the AI gateway is consulted.
package service

import (
	"context"
	"time"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/repository"
)

// ContentAssistant is the subset of the AI gateway the services use.
type ContentAssistant interface {
	GenerateCaption(ctx context.Context, topic string) string
	GenerateAdCopy(ctx context.Context, name, description string) string
	Moderate(ctx context.Context, text string) bool
}

// Services bundles every view service over one repository.
type Services struct {
	Auth        *AuthService
	Feed        *FeedService
	Marketplace *MarketplaceService
	Messenger   *MessengerService
	Profile     *ProfileService
	Groups      *GroupService
}

func New(db repository.DB, assistant ContentAssistant) *Services {
	return &Services{
		Auth:        NewAuthService(db),
		Feed:        NewFeedService(db, db, assistant),
		Marketplace: NewMarketplaceService(db, db, assistant),
		Messenger:   NewMessengerService(db, db, db),
		Profile:     NewProfileService(db, db),
		Groups:      NewGroupService(db, db),
	}
}

// requireUser returns the logged-in user or an UNAUTHORIZED error. The
// returned context carries the user id for logging.
func requireUser(ctx context.Context, sessions repository.SessionRepository) (context.Context, *models.User, error) {
	user, err := sessions.GetCurrentUser(ctx)
	if err != nil {
		return ctx, nil, err
	}
	if user == nil {
		return ctx, nil, models.NewUnauthorizedError("Login required")
	}
	return observability.WithUserID(ctx, user.ID), user, nil
}

func nowFunc() func() time.Time {
	return time.Now
}
