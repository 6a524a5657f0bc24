package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
)

const asyncTimeout = 30 * time.Second

// Async hands every event to a bounded worker pool. The request context is
// detached from cancellation before it reaches the wrapped notifier.
type Async struct {
	next Notifier
	pool *ants.Pool
}

func NewAsync(next Notifier, workers int) (*Async, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Async{next: next, pool: pool}, nil
}

func (a *Async) submit(ctx context.Context, event string, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	err := a.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(ctx, asyncTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logging.FromContext(ctx).Error("notify_panic", "event", event, "panic", r)
			}
		}()
		fn(ctx)
	})
	if err != nil {
		logging.FromContext(ctx).Error("notify_submit_error", "event", event, "error", err)
	}
}

func (a *Async) UserRegistered(ctx context.Context, user models.User) {
	a.submit(ctx, "user_registered", func(ctx context.Context) { a.next.UserRegistered(ctx, user) })
}

func (a *Async) UserLoggedIn(ctx context.Context, user models.User) {
	a.submit(ctx, "user_logged_in", func(ctx context.Context) { a.next.UserLoggedIn(ctx, user) })
}

func (a *Async) UserActive(ctx context.Context, userID uuid.UUID) {
	a.submit(ctx, "user_active", func(ctx context.Context) { a.next.UserActive(ctx, userID) })
}

func (a *Async) OrderPlaced(ctx context.Context, buyer models.User, order models.Order) {
	a.submit(ctx, "order_placed", func(ctx context.Context) { a.next.OrderPlaced(ctx, buyer, order) })
}

func (a *Async) OrderStatusChanged(ctx context.Context, order models.Order) {
	a.submit(ctx, "order_status_changed", func(ctx context.Context) { a.next.OrderStatusChanged(ctx, order) })
}

// Close waits up to timeout for queued events, then stops the pool.
func (a *Async) Close(timeout time.Duration) error {
	return a.pool.ReleaseTimeout(timeout)
}
