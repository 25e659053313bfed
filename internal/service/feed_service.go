package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/repository"
)

const (
	msgPostRejected = "Post violates community guidelines."
	msgTopicMissing = "Type a topic first for AI to help!"
)

type FeedService struct {
	posts     repository.PostRepository
	sessions  repository.SessionRepository
	assistant ContentAssistant
	now       func() time.Time
}

type CreatePostInput struct {
	Content   string
	MediaType models.PostType
}

func NewFeedService(posts repository.PostRepository, sessions repository.SessionRepository, assistant ContentAssistant) *FeedService {
	return &FeedService{
		posts:     posts,
		sessions:  sessions,
		assistant: assistant,
		now:       nowFunc(),
	}
}

func (s *FeedService) ListFeed(ctx context.Context) ([]models.Post, error) {
	return s.posts.ListPosts(ctx)
}

// CreatePost moderates the content and publishes it as the current user.
// Image and video posts get a placeholder media URL.
func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = models.PostTypeText
	}
	if !mediaType.Valid() || mediaType == models.PostTypeAd {
		return nil, models.NewValidationError("Invalid post type")
	}

	if !s.assistant.Moderate(ctx, in.Content) {
		observability.PostsRejected.Inc()
		slog.InfoContext(ctx, "post rejected by moderation", slog.String("user_id", user.ID))
		return nil, models.NewContentRejectedError(msgPostRejected)
	}

	ts := s.now().UnixMilli()
	post := models.Post{
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		Type:       mediaType,
		Content:    in.Content,
		Likes:      []string{},
		Comments:   []models.Comment{},
		Timestamp:  ts,
	}
	if mediaType != models.PostTypeText {
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%d/800/600", ts)
	}
	return s.posts.SavePost(ctx, post)
}

// ToggleLike likes the post as the current user, or unlikes it.
func (s *FeedService) ToggleLike(ctx context.Context, postID string) (*models.Post, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	return s.posts.ToggleLike(ctx, postID, user.ID)
}

func (s *FeedService) AddComment(ctx context.Context, postID, text string) (*models.Post, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	return s.posts.AddComment(ctx, postID, models.Comment{
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		Text:       text,
		Timestamp:  s.now().UnixMilli(),
	})
}

// AssistCaption drafts a caption for topic.
func (s *FeedService) AssistCaption(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", models.NewValidationError(msgTopicMissing)
	}
	return s.assistant.GenerateCaption(ctx, topic), nil
}
