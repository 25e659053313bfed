package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"socialsphere/internal/models"
	"socialsphere/internal/repository"
)

type MarketplaceService struct {
	products  repository.ProductRepository
	sessions  repository.SessionRepository
	assistant ContentAssistant
}

type SellInput struct {
	Title       string
	Price       float64
	Category    string
	Location    string
	Description string
}

func NewMarketplaceService(products repository.ProductRepository, sessions repository.SessionRepository, assistant ContentAssistant) *MarketplaceService {
	return &MarketplaceService{products: products, sessions: sessions, assistant: assistant}
}

func (s *MarketplaceService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.ListProducts(ctx)
}

// Sell lists a product for the current user.
func (s *MarketplaceService) Sell(ctx context.Context, in SellInput) (*models.Product, error) {
	ctx, user, err := requireUser(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Price < 0 {
		return nil, models.NewValidationError("Price must not be negative")
	}

	return s.products.SaveProduct(ctx, models.Product{
		SellerID:    user.ID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Category:    in.Category,
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s/400/400", url.PathEscape(in.Title)),
	})
}

func (s *MarketplaceService) GenerateAdCopy(ctx context.Context, name, description string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", models.NewValidationError("Product name is required")
	}
	return s.assistant.GenerateAdCopy(ctx, name, description), nil
}
