package server

import (
	"socialsphere/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetContacts handles GET /api/messages/contacts
func (s *Server) GetContacts(c *fiber.Ctx) error {
	contacts, err := s.messenger.Contacts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(contacts)
}

// GetConversation handles GET /api/messages/:userId
func (s *Server) GetConversation(c *fiber.Ctx) error {
	messages, err := s.messenger.Conversation(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage handles POST /api/messages/:userId
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	msg, err := s.messenger.Send(c.UserContext(), c.Params("userId"), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetGroups handles GET /api/groups
func (s *Server) GetGroups(c *fiber.Ctx) error {
	groups, err := s.groups.ListGroups(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(groups)
}

// CreateGroup handles POST /api/groups
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"isPrivate"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	group, err := s.groups.CreateGroup(c.UserContext(), service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// JoinGroup handles POST /api/groups/:id/join
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	group, err := s.groups.JoinGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}
