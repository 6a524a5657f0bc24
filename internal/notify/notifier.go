// Package notify delivers the fire-and-forget side effects of account and
// order events. Implementations never return errors to the caller; failures
// are logged.
package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type Notifier interface {
	UserRegistered(ctx context.Context, user models.User)
	UserLoggedIn(ctx context.Context, user models.User)
	UserActive(ctx context.Context, userID uuid.UUID)
	OrderPlaced(ctx context.Context, buyer models.User, order models.Order)
	OrderStatusChanged(ctx context.Context, order models.Order)
}

// Nop ignores every event. Embed it to implement only some of the methods.
type Nop struct{}

func (Nop) UserRegistered(context.Context, models.User)            {}
func (Nop) UserLoggedIn(context.Context, models.User)              {}
func (Nop) UserActive(context.Context, uuid.UUID)                  {}
func (Nop) OrderPlaced(context.Context, models.User, models.Order) {}
func (Nop) OrderStatusChanged(context.Context, models.Order)       {}

// Multi fans every event out to all notifiers in order.
type Multi []Notifier

func (m Multi) UserRegistered(ctx context.Context, user models.User) {
	for _, n := range m {
		n.UserRegistered(ctx, user)
	}
}

func (m Multi) UserLoggedIn(ctx context.Context, user models.User) {
	for _, n := range m {
		n.UserLoggedIn(ctx, user)
	}
}

func (m Multi) UserActive(ctx context.Context, userID uuid.UUID) {
	for _, n := range m {
		n.UserActive(ctx, userID)
	}
}

func (m Multi) OrderPlaced(ctx context.Context, buyer models.User, order models.Order) {
	for _, n := range m {
		n.OrderPlaced(ctx, buyer, order)
	}
}

func (m Multi) OrderStatusChanged(ctx context.Context, order models.Order) {
	for _, n := range m {
		n.OrderStatusChanged(ctx, order)
	}
}
