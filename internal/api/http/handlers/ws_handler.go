package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/presence"
)

// WSHandler upgrades presence connections and feeds the tracker.
type WSHandler struct {
	presence *presence.Tracker
}

// NewWSHandler constructs handler.
func NewWSHandler(tracker *presence.Tracker) *WSHandler {
	return &WSHandler{presence: tracker}
}

// Upgrade gates /ws behind the websocket upgrade check.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve owns one presence connection. The subject id comes from the
// handshake's userId query parameter; connections without one stay
// anonymous and never show up in the online set.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID := conn.Query("userId")

		h.presence.Connect(userID, conn)
		defer h.presence.Disconnect(userID, conn)

		// Drain the connection until the client goes away; presence only
		// pushes, it never consumes client frames.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
