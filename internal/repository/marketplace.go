package repository

import (
	"context"
	"sort"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
)

// ListProducts returns listings newest-first. The marketplace starts empty.
func (d *storeDB) ListProducts(ctx context.Context) ([]models.Product, error) {
	return load[models.Product](ctx, d, KeyProducts, nil)
}

func (d *storeDB) SaveProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	if product.ID == "" {
		product.ID = d.newID()
	}
	_, err := mutate(ctx, d, KeyProducts, nil, func(products []models.Product) ([]models.Product, error) {
		return append([]models.Product{product}, products...), nil
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyProducts).LogCreate(ctx, map[string]interface{}{"product_id": product.ID})
	return &product, nil
}

// ListMessages returns the conversation between two users, oldest first.
func (d *storeDB) ListMessages(ctx context.Context, userA, userB string) ([]models.Message, error) {
	all, err := load[models.Message](ctx, d, KeyMessages, nil)
	if err != nil {
		return nil, err
	}
	conversation := make([]models.Message, 0)
	for _, m := range all {
		if m.Between(userA, userB) {
			conversation = append(conversation, m)
		}
	}
	sort.SliceStable(conversation, func(i, j int) bool {
		return conversation[i].Timestamp < conversation[j].Timestamp
	})
	return conversation, nil
}

func (d *storeDB) SendMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	if msg.ID == "" {
		msg.ID = d.newID()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = d.nowMillis()
	}
	_, err := mutate(ctx, d, KeyMessages, nil, func(messages []models.Message) ([]models.Message, error) {
		return append(messages, msg), nil
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyMessages).LogCreate(ctx, map[string]interface{}{
		"message_id":  msg.ID,
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
	})
	return &msg, nil
}

func (d *storeDB) ListGroups(ctx context.Context) ([]models.Group, error) {
	return load[models.Group](ctx, d, KeyGroups, nil)
}

// SaveGroup prepends a new group.
func (d *storeDB) SaveGroup(ctx context.Context, group models.Group) (*models.Group, error) {
	if group.ID == "" {
		group.ID = d.newID()
	}
	if group.Members == nil {
		group.Members = []string{}
	}
	_, err := mutate(ctx, d, KeyGroups, nil, func(groups []models.Group) ([]models.Group, error) {
		return append([]models.Group{group}, groups...), nil
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyGroups).LogCreate(ctx, map[string]interface{}{"group_id": group.ID})
	return &group, nil
}

// JoinGroup adds userID to the group's members; joining twice is a no-op.
func (d *storeDB) JoinGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	var joined models.Group
	_, err := mutate(ctx, d, KeyGroups, nil, func(groups []models.Group) ([]models.Group, error) {
		for i := range groups {
			if groups[i].ID != groupID {
				continue
			}
			if !groups[i].HasMember(userID) {
				groups[i].Members = append(groups[i].Members, userID)
			}
			joined = groups[i]
			return groups, nil
		}
		return nil, models.NewNotFoundError("Group", groupID)
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyGroups).LogUpdate(ctx, map[string]interface{}{"group_id": groupID, "user_id": userID})
	return &joined, nil
}
