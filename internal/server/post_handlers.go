package server

import (
	"socialsphere/internal/models"
	"socialsphere/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.feed.ListFeed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string          `json:"content"`
		Type    models.PostType `json:"type"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	post, err := s.feed.CreatePost(c.UserContext(), service.CreatePostInput{
		Content:   req.Content,
		MediaType: req.Type,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	post, err := s.feed.ToggleLike(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// AddComment handles POST /api/posts/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	post, err := s.feed.AddComment(c.UserContext(), c.Params("id"), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// AssistCaption handles POST /api/ai/caption
func (s *Server) AssistCaption(c *fiber.Ctx) error {
	var req struct {
		Topic string `json:"topic"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	caption, err := s.feed.AssistCaption(c.UserContext(), req.Topic)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"caption": caption})
}
