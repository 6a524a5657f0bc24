package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

func orderReq(items ...transport.OrderItemRequest) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{Items: items}
}

func TestCreateOrder_DecrementsStockAndSnapshotsItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Lamp", 100, 5, 0, "lamp.jpg")

	order, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 2}))
	require.NoError(t, err)

	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(200)), order.TotalPrice.String())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.Reference)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Lamp", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "lamp.jpg", order.Items[0].Image)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(100)))

	left, err := env.Catalog.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, left.Stock)

	require.Len(t, env.Notifier.placed, 1)
	assert.Equal(t, order.ID, env.Notifier.placed[0].ID)
	assert.Empty(t, env.Store.Deleted())
}

func TestCreateOrder_ExhaustedArticleIsDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Chair", 40, 2, 0, "chair-main.jpg", "chair-side.jpg")

	_, err := env.Cart.Add(ctx, buyer.ID, a.ID, 1)
	require.NoError(t, err)

	order, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 2}))
	require.NoError(t, err)

	_, err = env.Catalog.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// the main image lives on in the order snapshot
	assert.Equal(t, []string{"chair-side.jpg"}, env.Store.Deleted())

	cart, err := env.Cart.Get(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	require.NoError(t, env.Orders.Delete(ctx, order.ID))
	assert.Equal(t, []string{"chair-side.jpg", "chair-main.jpg"}, env.Store.Deleted())
}

func TestCreateOrder_InsufficientStockLeavesStockUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Vase", 15, 2, 0, "vase.jpg")

	_, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 3}))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Vase")

	left, err := env.Catalog.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, left.Stock)
	assert.Empty(t, env.Notifier.placed)
}

func TestCreateOrder_FailureHasNoPartialEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	first := env.seedArticle(t, "Table", 300, 1, 0, "table.jpg")
	second := env.seedArticle(t, "Rug", 80, 1, 0, "rug.jpg")

	_, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(
		transport.OrderItemRequest{ArticleID: first.ID, Quantity: 1},
		transport.OrderItemRequest{ArticleID: second.ID, Quantity: 2},
	))
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := env.Catalog.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	orders, err := env.Orders.ListForUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, env.Store.Deleted())
}

func TestCreateOrder_RepeatedArticleIsSummed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Mug", 5, 3, 0, "mug.jpg")

	_, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(
		transport.OrderItemRequest{ArticleID: a.ID, Quantity: 2},
		transport.OrderItemRequest{ArticleID: a.ID, Quantity: 2},
	))
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := env.Catalog.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Mug", 5, 3, 0, "mug.jpg")

	_, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq())
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 0}))
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: uuid.New(), Quantity: 1}))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrder_ClientTotalIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Book", 12, 4, 0, "book.jpg")

	req := orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 3})
	req.TotalPrice = ptr(decimal.NewFromInt(1))

	order, err := env.Orders.CreateOrder(ctx, buyer.ID, req)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(36)), order.TotalPrice.String())
}

func TestOrderService_GetOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	stranger := env.seedUser(t, "stranger@example.com", models.RoleUser)
	a := env.seedArticle(t, "Book", 12, 4, 0, "book.jpg")

	order, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = env.Orders.Get(ctx, order.ID, buyer.ID, false)
	require.NoError(t, err)

	_, err = env.Orders.Get(ctx, order.ID, stranger.ID, false)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.Orders.Get(ctx, order.ID, stranger.ID, true)
	require.NoError(t, err)

	_, err = env.Orders.Get(ctx, uuid.New(), buyer.ID, true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.seedUser(t, "buyer@example.com", models.RoleUser)
	a := env.seedArticle(t, "Book", 12, 4, 0, "book.jpg")

	order, err := env.Orders.CreateOrder(ctx, buyer.ID, orderReq(transport.OrderItemRequest{ArticleID: a.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = env.Orders.UpdateStatus(ctx, order.ID, models.OrderStatus("lost"))
	require.ErrorIs(t, err, ErrValidation)

	updated, err := env.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.True(t, updated.TotalPrice.Equal(order.TotalPrice))
	assert.Equal(t, []models.OrderStatus{models.OrderStatusShipped}, env.Notifier.statuses)

	_, err = env.Orders.UpdateStatus(ctx, uuid.New(), models.OrderStatusShipped)
	require.ErrorIs(t, err, ErrNotFound)
}
