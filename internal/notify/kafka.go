package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type UserEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	At     time.Time `json:"at"`
}

type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Reference string    `json:"reference"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	Items     int       `json:"items"`
	At        time.Time `json:"at"`
}

// Kafka publishes account and order events as JSON messages.
type Kafka struct {
	Nop
	P Publisher
}

func NewKafka(p Publisher) *Kafka {
	return &Kafka{P: p}
}

func (k *Kafka) publish(ctx context.Context, topic, key string, event any) {
	if err := k.P.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "key", key, "error", err)
	}
}

func (k *Kafka) UserRegistered(ctx context.Context, user models.User) {
	k.publish(ctx, mykafka.TopicUserEvents, user.ID.String(), UserEvent{
		Type: "user_registered", UserID: user.ID.String(), Email: user.Email, Role: string(user.Role), At: time.Now().UTC(),
	})
}

func (k *Kafka) UserLoggedIn(ctx context.Context, user models.User) {
	k.publish(ctx, mykafka.TopicUserEvents, user.ID.String(), UserEvent{
		Type: "user_logged_in", UserID: user.ID.String(), At: time.Now().UTC(),
	})
}

func (k *Kafka) UserActive(ctx context.Context, userID uuid.UUID) {
	k.publish(ctx, mykafka.TopicUserEvents, userID.String(), UserEvent{
		Type: "user_active", UserID: userID.String(), At: time.Now().UTC(),
	})
}

func (k *Kafka) OrderPlaced(ctx context.Context, _ models.User, order models.Order) {
	k.publish(ctx, mykafka.TopicOrderEvents, order.ID.String(), newOrderEvent("order_placed", order))
}

func (k *Kafka) OrderStatusChanged(ctx context.Context, order models.Order) {
	k.publish(ctx, mykafka.TopicOrderEvents, order.ID.String(), newOrderEvent("order_status_changed", order))
}

func newOrderEvent(typ string, o models.Order) OrderEvent {
	return OrderEvent{
		Type:      typ,
		OrderID:   o.ID.String(),
		Reference: o.Reference,
		UserID:    o.UserID.String(),
		Status:    string(o.Status),
		Total:     o.TotalPrice.StringFixed(2),
		Items:     len(o.Items),
		At:        time.Now().UTC(),
	}
}
