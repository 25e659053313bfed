package server

import (
	"socialsphere/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSession handles GET /api/session
func (s *Server) GetSession(c *fiber.Ctx) error {
	user, err := s.auth.CurrentUser(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(user)
}

// LoginOrSignup handles POST /api/session
func (s *Server) LoginOrSignup(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, created, err := s.auth.LoginOrSignup(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(user)
	}
	return c.JSON(user)
}

// Logout handles DELETE /api/session
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.auth.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListUsers handles GET /api/users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.db.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetProfile handles GET /api/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.profile.Profile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT /api/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Name       string `json:"name"`
		Bio        string `json:"bio"`
		Avatar     string `json:"avatar"`
		CoverPhoto string `json:"coverPhoto"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := s.profile.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		Name:       req.Name,
		Bio:        req.Bio,
		Avatar:     req.Avatar,
		CoverPhoto: req.CoverPhoto,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
