package repository

import (
	"context"
	"fmt"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/seed"
)

func (d *storeDB) seedPosts() []models.Post {
	return seed.Posts(d.now())
}

// ListPosts returns the feed newest-first. Author names and avatars come from
// the current user records; the stored snapshot is used for unknown authors.
func (d *storeDB) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := load(ctx, d, KeyPosts, d.seedPosts)
	if err != nil {
		return nil, err
	}
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	refreshAuthors(posts, usersByID(users))
	return posts, nil
}

func refreshAuthors(posts []models.Post, users map[string]*models.User) {
	for i := range posts {
		p := &posts[i]
		if u, ok := users[p.UserID]; ok {
			p.UserName, p.UserAvatar = u.Name, u.Avatar
		}
		for j := range p.Comments {
			c := &p.Comments[j]
			if u, ok := users[c.UserID]; ok {
				c.UserName, c.UserAvatar = u.Name, u.Avatar
			}
		}
	}
}

func (d *storeDB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	posts, err := d.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func normalizePost(p *models.Post) {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
}

// SavePost prepends post to the feed. Missing IDs and timestamps are filled in.
func (d *storeDB) SavePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if post.ID == "" {
		post.ID = d.newID()
	}
	if post.Timestamp == 0 {
		post.Timestamp = d.nowMillis()
	}
	post.Version = 1
	normalizePost(&post)

	_, err := mutate(ctx, d, KeyPosts, d.seedPosts, func(posts []models.Post) ([]models.Post, error) {
		return append([]models.Post{post}, posts...), nil
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyPosts).LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "type": string(post.Type)})
	return &post, nil
}

// UpdatePost replaces the stored post with the same ID. A non-zero Version
// must match the stored one.
func (d *storeDB) UpdatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	normalizePost(&post)
	var updated models.Post
	_, err := mutate(ctx, d, KeyPosts, d.seedPosts, func(posts []models.Post) ([]models.Post, error) {
		i := indexOfPost(posts, post.ID)
		if i < 0 {
			return nil, models.NewNotFoundError("Post", post.ID)
		}
		if post.Version != 0 && post.Version != posts[i].Version {
			return nil, models.NewConflictError(
				fmt.Sprintf("post %s was modified (version %d, have %d)", post.ID, posts[i].Version, post.Version), nil)
		}
		updated = post
		updated.Version = posts[i].Version + 1
		posts[i] = updated
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyPosts).LogUpdate(ctx, map[string]interface{}{"post_id": post.ID, "version": updated.Version})
	return &updated, nil
}

// ToggleLike adds or removes userID in the post's like list in one atomic step.
func (d *storeDB) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	var (
		updated models.Post
		liked   bool
	)
	_, err := d.updatePost(ctx, postID, func(p *models.Post) {
		liked = p.ToggleLike(userID)
		updated = *p
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyPosts).LogUpdate(ctx, map[string]interface{}{"post_id": postID, "liked": liked})
	return &updated, nil
}

// AddComment appends comment to the post's thread.
func (d *storeDB) AddComment(ctx context.Context, postID string, comment models.Comment) (*models.Post, error) {
	if comment.ID == "" {
		comment.ID = d.newID()
	}
	if comment.Timestamp == 0 {
		comment.Timestamp = d.nowMillis()
	}

	var updated models.Post
	_, err := d.updatePost(ctx, postID, func(p *models.Post) {
		p.Comments = append(p.Comments, comment)
		updated = *p
	})
	if err != nil {
		return nil, err
	}
	observability.NewRepoLogger(KeyPosts).LogCreate(ctx, map[string]interface{}{"post_id": postID, "comment_id": comment.ID})
	return &updated, nil
}

// updatePost applies change to one post and bumps its version.
func (d *storeDB) updatePost(ctx context.Context, postID string, change func(*models.Post)) ([]models.Post, error) {
	return mutate(ctx, d, KeyPosts, d.seedPosts, func(posts []models.Post) ([]models.Post, error) {
		i := indexOfPost(posts, postID)
		if i < 0 {
			return nil, models.NewNotFoundError("Post", postID)
		}
		normalizePost(&posts[i])
		posts[i].Version++
		change(&posts[i])
		return posts, nil
	})
}

func indexOfPost(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
