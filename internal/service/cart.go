package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.Repo.GetOrCreateCart(ctx, userID)
}

// Add sets the quantity for the article. A repeated add replaces the stored
// quantity instead of adding to it.
func (s *CartService) Add(ctx context.Context, userID, articleID uuid.UUID, quantity int) (*models.Cart, error) {
	if articleID == uuid.Nil {
		return nil, fmt.Errorf("%w: article_id required", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	a, err := s.Repo.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleID)
		}
		return nil, err
	}
	if quantity > a.Stock {
		return nil, fmt.Errorf("%w: only %d left for %s", ErrInsufficientStock, a.Stock, a.Title)
	}

	if err := s.Repo.SetCartItem(ctx, userID, articleID, quantity); err != nil {
		return nil, err
	}
	return s.Repo.GetOrCreateCart(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, articleID uuid.UUID) (*models.Cart, error) {
	if err := s.Repo.RemoveCartItem(ctx, userID, articleID); err != nil {
		return nil, err
	}
	return s.Repo.GetOrCreateCart(ctx, userID)
}

// Clear deletes the whole cart. The next read creates a fresh one.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.DeleteCart(ctx, userID)
}
