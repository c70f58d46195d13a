package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Mount registers every route on the app. /groups/my is registered before
// /groups/:groupId on purpose.
func (h *Handler) Mount(app *fiber.App) {
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/users", h.ListUsers)

	chat := app.Group("/chat", h.RequireAuth)
	chat.Post("/send", h.SendMessage)
	chat.Get("/messages/:userId", h.ListMessages)
	chat.Patch("/delete-for-me/:messageId", h.DeleteForMe)
	chat.Patch("/delete-for-everyone/:messageId", h.DeleteForEveryone)

	groups := app.Group("/groups", h.RequireAuth)
	groups.Post("/create", h.CreateGroup)
	groups.Get("/my", h.MyGroups)
	groups.Get("/:groupId", h.GetGroup)
	groups.Get("/:groupId/messages", h.GroupMessages)
	groups.Patch("/:groupId/add-members", h.AddMembers)
	groups.Patch("/:groupId/remove-member", h.RemoveMember)
	groups.Patch("/:groupId/leave", h.LeaveGroup)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.ChatSocket))
}
