package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/chat"
)

type sendMessageRequest struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

// SendMessage POST /chat/send is the non-real-time path for direct sends;
// same rules, same stored state as the websocket path.
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}
	view, err := h.svc.SendDirect(identityFrom(c).UserID, req.Receiver, req.Content)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListMessages GET /chat/messages/:userId
func (h *Handler) ListMessages(c *fiber.Ctx) error {
	views, err := h.svc.DirectHistory(identityFrom(c).UserID, c.Params("userId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(views)
}

// DeleteForMe PATCH /chat/delete-for-me/:messageId
func (h *Handler) DeleteForMe(c *fiber.Ctx) error {
	if err := h.svc.DeleteForMe(identityFrom(c).UserID, c.Params("messageId")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteForEveryone PATCH /chat/delete-for-everyone/:messageId
func (h *Handler) DeleteForEveryone(c *fiber.Ctx) error {
	if _, err := h.svc.DeleteForEveryone(identityFrom(c).UserID, c.Params("messageId")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ChatSocket GET /ws is the identity gate: the token is verified before the
// client joins any room or has any event processed.
func (h *Handler) ChatSocket(conn *websocket.Conn) {
	token := conn.Query("token")
	if token == "" {
		token = bearerToken(conn.Headers(fiber.HeaderAuthorization))
	}
	identity, err := h.auth.VerifyToken(token)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, chat.ErrorFrame("Authentication error"))
		_ = conn.Close()
		return
	}

	client := chat.NewClient(uuid.NewString(), identity.UserID, identity.Username, conn)
	h.hub.Connect(client)
	go client.WritePump()
	client.ReadPump(h.hub)
	_ = conn.Close()
}
