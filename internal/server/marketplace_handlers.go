package server

import (
	"socialsphere/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProducts handles GET /api/products
func (s *Server) GetProducts(c *fiber.Ctx) error {
	products, err := s.marketplace.ListProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// SellProduct handles POST /api/products
func (s *Server) SellProduct(c *fiber.Ctx) error {
	var req struct {
		Title       string  `json:"title"`
		Price       float64 `json:"price"`
		Category    string  `json:"category"`
		Location    string  `json:"location"`
		Description string  `json:"description"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	product, err := s.marketplace.Sell(c.UserContext(), service.SellInput{
		Title:       req.Title,
		Price:       req.Price,
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// GenerateAdCopy handles POST /api/ai/ad-copy
func (s *Server) GenerateAdCopy(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	adCopy, err := s.marketplace.GenerateAdCopy(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"adCopy": adCopy})
}
