package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/seed"
)

// GetCurrentUser resolves the session against the user collection. It
// returns nil without error when nobody is logged in or the session points
// at a user that no longer exists.
func (d *storeDB) GetCurrentUser(ctx context.Context) (*models.User, error) {
	log := observability.NewRepoLogger(KeySession)

	raw, found, err := d.store.Read(ctx, KeySession)
	if err != nil {
		return nil, fail(ctx, log, mapStoreError(err), "read")
	}
	if !found {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fail(ctx, log, models.NewDataCorruptError(KeySession, err), "read")
	}

	user, err := d.GetUser(ctx, session.UserID)
	if models.IsNotFound(err) {
		return nil, nil
	}
	return user, err
}

// Login starts a session for the first user whose email matches exactly.
func (d *storeDB) Login(ctx context.Context, email string) (*models.User, error) {
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			if err := d.startSession(ctx, users[i].ID); err != nil {
				return nil, err
			}
			return &users[i], nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

// Signup always creates a new user, even when the email is already taken,
// and logs them in.
func (d *storeDB) Signup(ctx context.Context, name, email string) (*models.User, error) {
	user := models.User{
		ID:         "u" + d.newID(),
		Name:       name,
		Email:      email,
		Avatar:     fmt.Sprintf("https://picsum.photos/seed/%s/200", name),
		CoverPhoto: fmt.Sprintf("https://picsum.photos/seed/%s-cover/1000/300", name),
		Bio:        "New SocialSphere user",
		Friends:    []string{},
	}

	_, err := mutate(ctx, d, KeyUsers, seed.Users, func(users []models.User) ([]models.User, error) {
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyUsers).LogCreate(ctx, map[string]interface{}{"user_id": user.ID})

	if err := d.startSession(ctx, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *storeDB) Logout(ctx context.Context) error {
	if err := d.store.Remove(ctx, KeySession); err != nil {
		return fail(ctx, observability.NewRepoLogger(KeySession), mapStoreError(err), "delete")
	}
	observability.NewRepoLogger(KeySession).LogDelete(ctx, nil)
	return nil
}

func (d *storeDB) startSession(ctx context.Context, userID string) error {
	raw, err := json.Marshal(models.Session{UserID: userID, StartedAt: d.nowMillis()})
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := d.store.Write(ctx, KeySession, raw); err != nil {
		return fail(ctx, observability.NewRepoLogger(KeySession), mapStoreError(err), "create")
	}
	observability.NewRepoLogger(KeySession).LogCreate(ctx, map[string]interface{}{"user_id": userID})
	return nil
}
