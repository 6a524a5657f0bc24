package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/presence"
)

// Presence marks users online on login and activity pings.
type Presence struct {
	Nop
	Hub *presence.Hub
}

func (p *Presence) touch(ctx context.Context, userID uuid.UUID) {
	l := logging.FromContext(ctx)
	if err := p.Hub.Tracker().Touch(ctx, userID); err != nil {
		l.Warn("presence_touch_error", "user_id", userID, "error", err)
		return
	}
	if err := p.Hub.Broadcast(ctx); err != nil {
		l.Warn("presence_broadcast_error", "error", err)
	}
}

func (p *Presence) UserLoggedIn(ctx context.Context, user models.User) {
	p.touch(ctx, user.ID)
}

func (p *Presence) UserActive(ctx context.Context, userID uuid.UUID) {
	p.touch(ctx, userID)
}
