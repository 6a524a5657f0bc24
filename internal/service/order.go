package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Images   *ImageReleaser
	Index    search.Indexer
	Notifier notify.Notifier
	IDs      *snowflake.Node
}

// CreateOrder places an order for the requested items.
//
// Every item is validated against current stock before anything is written,
// with quantities summed per article. The decrements, deletion of exhausted
// articles and the order row are then committed in one transaction. Images
// of deleted articles are released after commit; a failed image delete is
// logged and does not fail the order.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("component", "order_workflow", "user_id", userID)

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	articles := make(map[uuid.UUID]*models.Article, len(req.Items))
	wanted := make(map[uuid.UUID]int, len(req.Items))
	for _, it := range req.Items {
		if it.ArticleID == uuid.Nil {
			return nil, fmt.Errorf("%w: article_id required", ErrValidation)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
		}

		a, ok := articles[it.ArticleID]
		if !ok {
			var err error
			a, err = s.Repo.GetArticle(ctx, it.ArticleID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: article %s", ErrNotFound, it.ArticleID)
				}
				return nil, err
			}
			articles[it.ArticleID] = a
		}

		wanted[it.ArticleID] += it.Quantity
		if wanted[it.ArticleID] > a.Stock {
			return nil, fmt.Errorf("%w: insufficient stock for %s", ErrInsufficientStock, a.Title)
		}
	}

	order := &models.Order{
		Reference: s.IDs.Generate().String(),
		UserID:    userID,
		Status:    models.OrderStatusPending,
		Items:     make([]models.OrderItem, 0, len(req.Items)),
	}
	var exhausted []*models.Article

	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		total := decimal.Zero
		for _, it := range req.Items {
			a := articles[it.ArticleID]

			left, err := tx.DecrementStock(ctx, a.ID, it.Quantity)
			if err != nil {
				if errors.Is(err, repo.ErrStockChanged) {
					return fmt.Errorf("%w: insufficient stock for %s", ErrInsufficientStock, a.Title)
				}
				return err
			}
			a.Stock = left

			order.Items = append(order.Items, models.OrderItem{
				ArticleID: a.ID,
				Title:     a.Title,
				Price:     a.Price,
				Quantity:  it.Quantity,
				Image:     a.MainImage(),
			})
			total = total.Add(a.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))

			if left <= 0 {
				if err := tx.DeleteArticle(ctx, a.ID); err != nil {
					return err
				}
				exhausted = append(exhausted, a)
			}
		}
		order.TotalPrice = total
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if req.TotalPrice != nil && !req.TotalPrice.Equal(order.TotalPrice) {
		l.Warn("order_total_mismatch", "order_id", order.ID, "client_total", req.TotalPrice.String(), "total", order.TotalPrice.String())
	}

	for _, a := range exhausted {
		l.Info("article_exhausted", "article_id", a.ID, "order_id", order.ID)
		s.Images.Release(ctx, a.ImageRefs(), a.ID)
		if err := s.Index.DeleteArticle(ctx, a.ID); err != nil {
			l.Warn("unindex_article_error", "article_id", a.ID, "error", err)
		}
	}

	buyer := models.User{ID: userID}
	if u, err := s.Repo.GetUserByID(ctx, userID); err == nil {
		buyer = *u
	}
	s.Notifier.OrderPlaced(ctx, buyer, *order)

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id, requester uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}
	if !isAdmin && order.UserID != requester {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListAll(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, offset, limit)
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

// UpdateStatus changes the status, the only mutable field of an order.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	order, err := s.Repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}
	s.Notifier.OrderStatusChanged(ctx, *order)
	return order, nil
}

// Delete removes the order. Snapshot images that only this order still
// pointed at are released.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return err
	}
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return err
	}

	refs := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		refs = append(refs, it.Image)
	}
	s.Images.Release(ctx, refs, uuid.Nil)
	return nil
}

func (s *OrderService) Export(ctx context.Context) ([]models.Order, error) {
	return s.Repo.AllOrders(ctx)
}
