package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scopechat/internal/hub"
)

// upgradeWS gates the websocket route: the session must be resolved from
// the cookie before the protocol upgrade, because the upgraded handler
// no longer sees the fiber context.
func (h *Handlers) upgradeWS(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	user, ok := h.currentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	c.Locals("user_id", user.ID)
	c.Locals("username", user.Username)
	return c.Next()
}

// ServeWS GET /ws
func (h *Handlers) ServeWS(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(int64)
	name, _ := conn.Locals("username").(string)
	if userID == 0 {
		conn.Close()
		return
	}

	client := hub.NewClient(h.hub, uuid.NewString(), userID, name, conn)
	h.hub.RegisterChan <- client
	h.log.Debug("websocket session opened",
		zap.String("conn", client.ConnID), zap.String("user", name))

	go client.WritePump()
	client.ReadPump()
}
