package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/presence"
)

type PresenceHTTP struct {
	Hub *presence.Hub
}

// Serve keeps the websocket open until the client leaves.
func (h *PresenceHTTP) Serve(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "presence.ws")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	// A failed upgrade has already been answered by the upgrader.
	if err := h.Hub.Serve(c.Response(), c.Request(), userID); err != nil {
		l.Warn("presence_ws_error", "user_id", userID, "error", err)
	}
	return nil
}
