package repository

import (
	"context"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/seed"
)

func (d *storeDB) ListUsers(ctx context.Context) ([]models.User, error) {
	return load(ctx, d, KeyUsers, seed.Users)
}

func (d *storeDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

// UpdateUser overwrites the stored user with the same ID.
func (d *storeDB) UpdateUser(ctx context.Context, user models.User) error {
	if user.Friends == nil {
		user.Friends = []string{}
	}
	_, err := mutate(ctx, d, KeyUsers, seed.Users, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == user.ID {
				users[i] = user
				return users, nil
			}
		}
		return nil, models.NewNotFoundError("User", user.ID)
	})
	if err != nil {
		return err
	}
	observability.NewRepoLogger(KeyUsers).LogUpdate(ctx, map[string]interface{}{"user_id": user.ID})
	return nil
}

// SaveUsers appends users in order, after the existing ones.
func (d *storeDB) SaveUsers(ctx context.Context, newUsers []models.User) error {
	_, err := mutate(ctx, d, KeyUsers, seed.Users, func(users []models.User) ([]models.User, error) {
		return append(users, newUsers...), nil
	})
	if err != nil {
		return err
	}
	observability.NewRepoLogger(KeyUsers).LogCreate(ctx, map[string]interface{}{"count": len(newUsers)})
	return nil
}

func usersByID(users []models.User) map[string]*models.User {
	m := make(map[string]*models.User, len(users))
	for i := range users {
		if _, dup := m[users[i].ID]; !dup {
			m[users[i].ID] = &users[i]
		}
	}
	return m
}
